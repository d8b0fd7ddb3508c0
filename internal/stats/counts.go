// Package stats derives the per-model views of the loaded topic data: party
// counts, trends, model comparisons, topic classifications, strictness and the
// parties table.
package stats

import (
	"sort"

	"github.com/ppiankov/manifesto/internal/model"
)

// Dataset is every loaded record, keyed by model, year and party
type Dataset map[string]map[string]model.PartyData

// PartyCount is one bar of the parties chart
type PartyCount struct {
	Party    string `json:"party"`
	Semantic int    `json:"semantic"`
	Explicit int    `json:"explicit"`
}

// Total returns the stacked bar height
func (c PartyCount) Total() int {
	return c.Semantic + c.Explicit
}

// PartyCounts returns per-party counts for one (model, year), sorted by party.
// Explicit mode reports semantic counts as zero.
func PartyCounts(data model.PartyData, mode model.FilterMode) []PartyCount {
	out := make([]PartyCount, 0, len(data))
	for _, party := range data.Parties() {
		r := data[party]
		c := PartyCount{Party: party, Semantic: r.SemanticCount, Explicit: r.ExplicitCount}
		if mode == model.FilterExplicit {
			c.Semantic = 0
		}
		out = append(out, c)
	}
	return out
}

// TrendSeries is one party's line across the trend's years
type TrendSeries struct {
	Party  string `json:"party"`
	Counts []int  `json:"counts"`
}

// Trend holds per-year totals of every party for one model
type Trend struct {
	Model  string        `json:"model"`
	Years  []string      `json:"years"`
	Series []TrendSeries `json:"series"`
}

// BuildTrend computes the trend for one model's years. Explicit mode counts
// explicit statements only; otherwise semantic and explicit are summed. A party
// missing in a year counts 0.
func BuildTrend(modelName string, years map[string]model.PartyData, mode model.FilterMode) Trend {
	t := Trend{Model: modelName, Years: make([]string, 0, len(years))}
	parties := make(map[string]bool)
	for year, data := range years {
		t.Years = append(t.Years, year)
		for p := range data {
			parties[p] = true
		}
	}
	sort.Strings(t.Years)

	for _, party := range sortedSet(parties) {
		s := TrendSeries{Party: party, Counts: make([]int, len(t.Years))}
		for i, year := range t.Years {
			r, ok := years[year][party]
			if !ok {
				continue
			}
			if mode == model.FilterExplicit {
				s.Counts[i] = r.ExplicitCount
			} else {
				s.Counts[i] = r.SemanticCount + r.ExplicitCount
			}
		}
		t.Series = append(t.Series, s)
	}
	return t
}

// ModelCount is one model's view of a party
type ModelCount struct {
	Model    string        `json:"model"`
	Semantic int           `json:"semantic"`
	Explicit int           `json:"explicit"`
	Topics   []model.Topic `json:"topics"`
}

// ModelsForParty sums each model's counts for party over one year, or over all
// years when year is empty or "all". Models without data for the party are
// left out. Explicit mode zeroes semantic counts and keeps explicit topics only.
func ModelsForParty(ds Dataset, party, year string, mode model.FilterMode) []ModelCount {
	models := make([]string, 0, len(ds))
	for m := range ds {
		models = append(models, m)
	}
	sort.Strings(models)

	var out []ModelCount
	for _, m := range models {
		c := ModelCount{Model: m, Topics: []model.Topic{}}
		found := false
		for _, y := range sortedYears(ds[m]) {
			if !matchesYear(year, y) {
				continue
			}
			r, ok := ds[m][y][party]
			if !ok {
				continue
			}
			found = true
			c.Semantic += r.SemanticCount
			c.Explicit += r.ExplicitCount
			c.Topics = append(c.Topics, r.FilteredTopics(mode)...)
		}
		if !found {
			continue
		}
		if mode == model.FilterExplicit {
			c.Semantic = 0
		}
		out = append(out, c)
	}
	return out
}

// Strictness is a model's share of explicit versus semantic statements
type Strictness struct {
	Model       string  `json:"model"`
	Explicit    int     `json:"explicit"`
	Semantic    int     `json:"semantic"`
	ExplicitPct float64 `json:"explicit_pct"`
	SemanticPct float64 `json:"semantic_pct"`
}

// BuildStrictness computes per-model percentages over one year, or all years
// when year is empty or "all". A model with no statements reports 0%.
func BuildStrictness(ds Dataset, year string) []Strictness {
	byModel := make(map[string]*Strictness)
	for m, years := range ds {
		for y, data := range years {
			if !matchesYear(year, y) {
				continue
			}
			for _, r := range data {
				s, ok := byModel[m]
				if !ok {
					s = &Strictness{Model: m}
					byModel[m] = s
				}
				s.Explicit += r.ExplicitCount
				s.Semantic += r.SemanticCount
			}
		}
	}

	out := make([]Strictness, 0, len(byModel))
	for _, s := range byModel {
		if total := s.Explicit + s.Semantic; total > 0 {
			s.ExplicitPct = float64(s.Explicit) * 100 / float64(total)
			s.SemanticPct = float64(s.Semantic) * 100 / float64(total)
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out
}

func matchesYear(want, year string) bool {
	return want == "" || want == "all" || want == year
}

func sortedYears(years map[string]model.PartyData) []string {
	out := make([]string, 0, len(years))
	for y := range years {
		out = append(out, y)
	}
	sort.Strings(out)
	return out
}

func sortedSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
