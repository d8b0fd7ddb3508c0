package score

import (
	"sort"

	"github.com/ppiankov/manifesto/internal/model"
)

// Filter constrains the consensus detail list. A nil *Filter, and any unset
// field, matches everything.
type Filter struct {
	MinConfidence *float64 `json:"min_confidence,omitempty"`
	MaxConfidence *float64 `json:"max_confidence,omitempty"`
	// MaxInclusive makes MaxConfidence an inclusive bound. The high band uses
	// it so that confidence 1.0 is kept.
	MaxInclusive bool   `json:"max_inclusive,omitempty"`
	Party        string `json:"party,omitempty"`
	Year         string `json:"year,omitempty"`
}

// Range returns the confidence interval a band covers
func (b Band) Range() (min, max float64, maxInclusive bool) {
	switch b {
	case BandHigh:
		return HighThreshold, 1, true
	case BandMedium:
		return MediumThreshold, HighThreshold, false
	default:
		return 0, MediumThreshold, false
	}
}

// BandFilter builds the filter for a click on one band of one party-year bar
func BandFilter(b Band, party, year string) *Filter {
	min, max, inclusive := b.Range()
	return &Filter{
		MinConfidence: &min,
		MaxConfidence: &max,
		MaxInclusive:  inclusive,
		Party:         party,
		Year:          year,
	}
}

// MatchesParty reports whether a party-year passes the party and year fields
func (f *Filter) MatchesParty(p model.PartyClusters) bool {
	if f == nil {
		return true
	}
	if f.Party != "" && p.Party != f.Party {
		return false
	}
	if f.Year != "" && p.Year != f.Year {
		return false
	}
	return true
}

// MatchesConfidence reports whether a confidence value lies inside the bounds
func (f *Filter) MatchesConfidence(c float64) bool {
	if f == nil {
		return true
	}
	if f.MinConfidence != nil && c < *f.MinConfidence {
		return false
	}
	if f.MaxConfidence != nil {
		if f.MaxInclusive && c > *f.MaxConfidence {
			return false
		}
		if !f.MaxInclusive && c >= *f.MaxConfidence {
			return false
		}
	}
	return true
}

// Card is one party-year block of the detail list
type Card struct {
	Party        string          `json:"party"`
	PartyDisplay string          `json:"party_display"`
	Year         string          `json:"year"`
	TotalModels  int             `json:"total_models"`
	Items        []model.Cluster `json:"items"`
}

// Cards applies f to an aggregation result. Cards come in display-name order,
// their items by confidence descending; cards left without items are omitted.
// The input is not modified.
func Cards(parties []model.PartyClusters, f *Filter) []Card {
	cards := make([]Card, 0, len(parties))
	for _, p := range sortByDisplay(parties) {
		if !f.MatchesParty(p) {
			continue
		}

		items := make([]model.Cluster, 0, len(p.Items))
		for _, item := range p.Items {
			if f.MatchesConfidence(item.Confidence) {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Confidence > items[j].Confidence
		})

		cards = append(cards, Card{
			Party:        p.Party,
			PartyDisplay: p.PartyDisplay,
			Year:         p.Year,
			TotalModels:  p.TotalModels,
			Items:        items,
		})
	}
	return cards
}
