package consensus

import (
	"sort"
	"unicode/utf8"

	"github.com/ppiankov/manifesto/internal/model"
)

// Cluster groups findings whose spans lie within radius characters of the
// running cluster end. Findings are swept in start order (stable on input
// order), so the result is ordered by each cluster's first start offset.
//
// totalModels is the number of eligible models for the party-year; confidence
// is 0 when it is not positive.
func Cluster(findings []model.Finding, radius, totalModels int) []model.Cluster {
	if len(findings) == 0 {
		return []model.Cluster{}
	}

	sorted := make([]model.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var clusters []model.Cluster
	acc := newAccumulator(sorted[0])
	for _, f := range sorted[1:] {
		if f.Start-acc.end <= radius {
			acc.add(f)
			continue
		}
		clusters = append(clusters, acc.finalize(totalModels))
		acc = newAccumulator(f)
	}
	clusters = append(clusters, acc.finalize(totalModels))

	return clusters
}

type accumulator struct {
	start    int
	end      int
	findings []model.Finding
	models   map[string]struct{}
}

func newAccumulator(f model.Finding) *accumulator {
	a := &accumulator{
		start:  f.Start,
		end:    f.End,
		models: make(map[string]struct{}),
	}
	a.add(f)
	return a
}

func (a *accumulator) add(f model.Finding) {
	if f.End > a.end {
		a.end = f.End
	}
	a.findings = append(a.findings, f)
	a.models[f.Model] = struct{}{}
}

func (a *accumulator) finalize(totalModels int) model.Cluster {
	// Longest text wins; strict comparison keeps the earliest on ties.
	rep := a.findings[0].Text
	repLen := utf8.RuneCountInString(rep)
	for _, f := range a.findings[1:] {
		if n := utf8.RuneCountInString(f.Text); n > repLen {
			rep, repLen = f.Text, n
		}
	}

	models := make([]string, 0, len(a.models))
	for m := range a.models {
		models = append(models, m)
	}
	sort.Strings(models)

	votes := len(models)
	return model.Cluster{
		Text:        rep,
		Start:       a.start,
		End:         a.end,
		VoteCount:   votes,
		TotalModels: totalModels,
		Confidence:  Confidence(votes, totalModels),
		Models:      models,
		Findings:    a.findings,
	}
}

// Confidence is votes/total, or 0 when total is not positive.
func Confidence(votes, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(votes) / float64(total)
}

// ClampRadius bounds user-supplied radius input to [0, max]. A non-positive max
// leaves the upper end unbounded.
func ClampRadius(radius, max int) int {
	if radius < 0 {
		return 0
	}
	if max > 0 && radius > max {
		return max
	}
	return radius
}
