package consensus

import (
	"sort"
	"sync"

	"github.com/ppiankov/manifesto/internal/model"
)

// Request selects what to aggregate from a consensus snapshot.
type Request struct {
	Year   string
	Radius int
	Mode   model.FilterMode
	Models []string // selected analyzers; findings from other models are ignored
}

// Result is one aggregation: a processed view per party for the year.
type Result struct {
	Request Request
	Parties []model.PartyClusters
}

// Aggregator clusters consensus findings and keeps the most recent result so
// later filtering does not need to recluster.
type Aggregator struct {
	mu   sync.RWMutex
	last *Result
}

// NewAggregator creates an aggregator with an empty result slot
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate builds the processed view for req.Year. The snapshot is read only;
// every slice in the result is freshly allocated.
func (a *Aggregator) Aggregate(snapshot []model.PartyYearConsensus, req Request) *Result {
	req.Models = append([]string(nil), req.Models...)
	selected := make(map[string]bool, len(req.Models))
	for _, m := range req.Models {
		selected[m] = true
	}

	result := &Result{Request: req, Parties: []model.PartyClusters{}}
	for i := range snapshot {
		party := &snapshot[i]
		if party.Year != req.Year {
			continue
		}
		result.Parties = append(result.Parties, processParty(party, selected, req))
	}

	a.mu.Lock()
	a.last = result
	a.mu.Unlock()

	return result
}

// Last returns the most recent aggregation, or nil before the first call.
func (a *Aggregator) Last() *Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

func processParty(party *model.PartyYearConsensus, selected map[string]bool, req Request) model.PartyClusters {
	eligible := eligibleModels(party.Models, selected, req.Models)
	eligibleSet := make(map[string]bool, len(eligible))
	for _, m := range eligible {
		eligibleSet[m] = true
	}

	raw := make([]model.RawFinding, 0, len(party.RawFindings))
	for _, f := range party.RawFindings {
		if !eligibleSet[f.Model] || !req.Mode.Matches(f.Category) {
			continue
		}
		raw = append(raw, f)
	}

	findings, dropped := NormalizeAll(raw)
	return model.PartyClusters{
		Year:         party.Year,
		Party:        party.Party,
		PartyDisplay: party.PartyDisplay,
		Models:       eligible,
		TotalModels:  len(eligible),
		Dropped:      dropped,
		Items:        Cluster(findings, req.Radius, len(eligible)),
	}
}

// eligibleModels intersects the party's analyzer list with the selection. When
// the party record has no model list the whole selection counts, which can
// overstate confidence for parties some selected model never analyzed.
func eligibleModels(partyModels []string, selected map[string]bool, selection []string) []string {
	var out []string
	if partyModels == nil {
		out = append(out, selection...)
	} else {
		for _, m := range partyModels {
			if selected[m] {
				out = append(out, m)
			}
		}
	}
	out = dedupe(out)
	sort.Strings(out)
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Years lists the years present in a consensus snapshot, newest first.
func Years(snapshot []model.PartyYearConsensus) []string {
	seen := make(map[string]bool)
	var years []string
	for _, p := range snapshot {
		if !seen[p.Year] {
			seen[p.Year] = true
			years = append(years, p.Year)
		}
	}
	model.SortYearsDesc(years)
	return years
}

// Models lists every analyzer in a snapshot: the union of the records' model
// lists, or the finding models for records that lack one.
func Models(snapshot []model.PartyYearConsensus) []string {
	seen := make(map[string]bool)
	for _, p := range snapshot {
		if p.Models != nil {
			for _, m := range p.Models {
				seen[m] = true
			}
			continue
		}
		for _, f := range p.RawFindings {
			seen[f.Model] = true
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
