package score

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ppiankov/manifesto/internal/model"
)

// Band is a confidence class for a consensus cluster
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// Lower bounds of the high and medium bands
const (
	HighThreshold   = 0.8
	MediumThreshold = 0.5
)

// Bands lists the bands in chart order (dataset index 0, 1, 2)
var Bands = []Band{BandHigh, BandMedium, BandLow}

// Classify assigns a confidence value to its band
func Classify(confidence float64) Band {
	switch {
	case confidence >= HighThreshold:
		return BandHigh
	case confidence >= MediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// Label returns the German legend label used on the consensus chart
func (b Band) Label() string {
	switch b {
	case BandHigh:
		return "Hoher Konsens"
	case BandMedium:
		return "Mittlerer Konsens"
	default:
		return "Niedriger Konsens"
	}
}

// Color returns the band's chart color
func (b Band) Color() string {
	switch b {
	case BandHigh:
		return "#2ecc71"
	case BandMedium:
		return "#f1c40f"
	default:
		return "#e74c3c"
	}
}

// ParseBand accepts band names case-sensitively as they are rendered
func ParseBand(s string) (Band, bool) {
	for _, b := range Bands {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}

// Summary counts one party-year's clusters per band
type Summary struct {
	Party        string `json:"party"`
	PartyDisplay string `json:"party_display"`
	Year         string `json:"year"`
	TotalModels  int    `json:"total_models"`
	High         int    `json:"high"`
	Medium       int    `json:"medium"`
	Low          int    `json:"low"`
}

// Count returns the number of clusters in band b
func (s Summary) Count(b Band) int {
	switch b {
	case BandHigh:
		return s.High
	case BandMedium:
		return s.Medium
	default:
		return s.Low
	}
}

// Summarize counts clusters per band for every party-year, ordered by display
// name the way the chart lays out its bars.
func Summarize(parties []model.PartyClusters) []Summary {
	ordered := sortByDisplay(parties)
	out := make([]Summary, 0, len(ordered))
	for _, p := range ordered {
		s := Summary{
			Party:        p.Party,
			PartyDisplay: p.PartyDisplay,
			Year:         p.Year,
			TotalModels:  p.TotalModels,
		}
		for _, item := range p.Items {
			switch Classify(item.Confidence) {
			case BandHigh:
				s.High++
			case BandMedium:
				s.Medium++
			default:
				s.Low++
			}
		}
		out = append(out, s)
	}
	return out
}

// sortByDisplay returns a copy of parties ordered by German collation of the
// display name.
func sortByDisplay(parties []model.PartyClusters) []model.PartyClusters {
	out := append([]model.PartyClusters(nil), parties...)
	col := collate.New(language.German)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i].PartyDisplay, out[j].PartyDisplay) < 0
	})
	return out
}
