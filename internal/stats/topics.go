package stats

import (
	"sort"

	"github.com/ppiankov/manifesto/internal/model"
)

const (
	// DefaultClassification labels topics without a classification
	DefaultClassification = "SONSTIGES"
	// OtherLabel names the remainder series of the stacked chart
	OtherLabel = "Andere"
	// StackedTopN is the number of classifications the stacked chart shows
	StackedTopN = 10
	// CloudLimit is the number of classifications the word cloud shows
	CloudLimit = 50
)

// TopicItem is a topic together with where it was found
type TopicItem struct {
	model.Topic
	Party string `json:"party"`
	Model string `json:"model"`
	Year  string `json:"year"`
}

// Classification groups the topics sharing one classification
type Classification struct {
	Name  string      `json:"name"`
	Count int         `json:"count"`
	Items []TopicItem `json:"items"`
}

// TopicStats is the result of a topics query
type TopicStats struct {
	// Classifications are ordered by count descending, then name.
	Classifications []Classification `json:"classifications"`
	// PartyCounts maps party to classification to count.
	PartyCounts map[string]map[string]int `json:"party_counts"`
}

// Topics groups topics by classification for one year and model; an empty
// value or "all" selects everything. Explicit mode keeps explicit topics only.
func Topics(ds Dataset, year, modelName string, mode model.FilterMode) TopicStats {
	byName := make(map[string]*Classification)
	partyCounts := make(map[string]map[string]int)

	models := make([]string, 0, len(ds))
	for m := range ds {
		models = append(models, m)
	}
	sort.Strings(models)

	for _, m := range models {
		if modelName != "" && modelName != "all" && modelName != m {
			continue
		}
		for _, y := range sortedYears(ds[m]) {
			if !matchesYear(year, y) {
				continue
			}
			data := ds[m][y]
			for _, party := range data.Parties() {
				for _, t := range data[party].Topics {
					if !mode.Matches(t.Category) {
						continue
					}
					name := t.Classification
					if name == "" {
						name = DefaultClassification
					}

					c, ok := byName[name]
					if !ok {
						c = &Classification{Name: name}
						byName[name] = c
					}
					c.Count++
					c.Items = append(c.Items, TopicItem{Topic: t, Party: party, Model: m, Year: y})

					if partyCounts[party] == nil {
						partyCounts[party] = make(map[string]int)
					}
					partyCounts[party][name]++
				}
			}
		}
	}

	out := TopicStats{
		Classifications: make([]Classification, 0, len(byName)),
		PartyCounts:     partyCounts,
	}
	for _, c := range byName {
		out.Classifications = append(out.Classifications, *c)
	}
	sort.Slice(out.Classifications, func(i, j int) bool {
		a, b := out.Classifications[i], out.Classifications[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	return out
}

// Lookup returns the classification called name
func (s TopicStats) Lookup(name string) (Classification, bool) {
	for _, c := range s.Classifications {
		if c.Name == name {
			return c, true
		}
	}
	return Classification{}, false
}

// Series is one dataset of a stacked bar chart
type Series struct {
	Label  string `json:"label"`
	Counts []int  `json:"counts"`
}

// StackedChart lays out the top classifications per party
type StackedChart struct {
	Parties []string `json:"parties"`
	Series  []Series `json:"series"`
}

// Stacked returns one series per top-n classification and, when more exist, an
// OtherLabel series with each party's remainder.
func (s TopicStats) Stacked(n int) StackedChart {
	parties := make([]string, 0, len(s.PartyCounts))
	for p := range s.PartyCounts {
		parties = append(parties, p)
	}
	sort.Strings(parties)

	top := s.Classifications
	if len(top) > n {
		top = top[:n]
	}
	inTop := make(map[string]bool, len(top))

	chart := StackedChart{Parties: parties}
	for _, c := range top {
		inTop[c.Name] = true
		series := Series{Label: c.Name, Counts: make([]int, len(parties))}
		for i, p := range parties {
			series.Counts[i] = s.PartyCounts[p][c.Name]
		}
		chart.Series = append(chart.Series, series)
	}

	if len(s.Classifications) > n {
		other := Series{Label: OtherLabel, Counts: make([]int, len(parties))}
		for i, p := range parties {
			for name, count := range s.PartyCounts[p] {
				if !inTop[name] {
					other.Counts[i] += count
				}
			}
		}
		chart.Series = append(chart.Series, other)
	}
	return chart
}

// PartyDistribution counts the classification's items per party, sorted by
// party
func (c Classification) PartyDistribution() []PartyTotal {
	counts := make(map[string]int)
	for _, item := range c.Items {
		counts[item.Party]++
	}
	out := make([]PartyTotal, 0, len(counts))
	for p, n := range counts {
		out = append(out, PartyTotal{Party: p, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Party < out[j].Party })
	return out
}

// PartyTotal is a count attributed to one party
type PartyTotal struct {
	Party string `json:"party"`
	Count int    `json:"count"`
}

// CloudWord is one entry of the word cloud
type CloudWord struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Size  float64 `json:"size"`  // font size between 14 and 60
	Alpha float64 `json:"alpha"` // opacity between 0.6 and 1
}

// Cloud scales the top limit classifications between the smallest and largest
// count, largest first.
func (s TopicStats) Cloud(limit int) []CloudWord {
	top := s.Classifications
	if len(top) > limit {
		top = top[:limit]
	}
	if len(top) == 0 {
		return nil
	}

	maxCount, minCount := top[0].Count, top[len(top)-1].Count
	span := float64(maxCount - minCount)
	if span == 0 {
		span = 1
	}

	out := make([]CloudWord, len(top))
	for i, c := range top {
		ratio := float64(c.Count-minCount) / span
		out[i] = CloudWord{
			Name:  c.Name,
			Count: c.Count,
			Size:  14 + ratio*46,
			Alpha: 0.6 + ratio*0.4,
		}
	}
	return out
}

// SearchItems keeps items whose party, topic or quote contains term, case-folded
func SearchItems(items []TopicItem, term string) []TopicItem {
	out := make([]TopicItem, 0, len(items))
	for _, item := range items {
		if term == "" || containsAny(term, item.Party, item.Topic.Topic, item.OriginalQuote) {
			out = append(out, item)
		}
	}
	return out
}
