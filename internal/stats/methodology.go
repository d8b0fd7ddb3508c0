package stats

import (
	"fmt"
	"sort"

	"github.com/ppiankov/manifesto/internal/model"
)

// FuzzyThreshold is the match score below which a position was located by
// fuzzy matching
const FuzzyThreshold = 90

// MethodologyPoint is one located finding on a document
type MethodologyPoint struct {
	Percent float64 `json:"percent"` // position in the document, 0-100
	Score   float64 `json:"score"`
	Fuzzy   bool    `json:"fuzzy"`
}

// MethodologyRow is one (year, party, model) document
type MethodologyRow struct {
	Label  string             `json:"label"`
	Year   string             `json:"year"`
	Party  string             `json:"party"`
	Model  string             `json:"model"`
	Points []MethodologyPoint `json:"points"`
}

// Methodology returns the distribution records for year ("" or "all" for
// every year), ordered by year descending, then party and model.
func Methodology(records []model.DistributionRecord, year string) []MethodologyRow {
	selected := make([]model.DistributionRecord, 0, len(records))
	for _, r := range records {
		if matchesYear(year, r.Year) {
			selected = append(selected, r)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Party != b.Party {
			return a.Party < b.Party
		}
		return a.Model < b.Model
	})

	rows := make([]MethodologyRow, 0, len(selected))
	for _, r := range selected {
		row := MethodologyRow{
			Label:  fmt.Sprintf("%s - %s (%s)", r.Year, r.Party, r.Model),
			Year:   r.Year,
			Party:  r.Party,
			Model:  r.Model,
			Points: make([]MethodologyPoint, 0, len(r.Positions)),
		}
		for _, p := range r.Positions {
			row.Points = append(row.Points, MethodologyPoint{
				Percent: p.Pos * 100,
				Score:   p.Score,
				Fuzzy:   p.Score < FuzzyThreshold,
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// MethodologyYears returns the distinct years of records, newest first
func MethodologyYears(records []model.DistributionRecord) []string {
	seen := make(map[string]bool)
	for _, r := range records {
		seen[r.Year] = true
	}
	years := sortedSet(seen)
	model.SortYearsDesc(years)
	return years
}
