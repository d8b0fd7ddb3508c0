package stats

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/ppiankov/manifesto/internal/model"
)

// Row is one line of the parties table
type Row struct {
	Party         string `json:"party"`
	Category      string `json:"category"`
	Topic         string `json:"topic"`
	OriginalQuote string `json:"originalQuote"`
	Location      string `json:"location,omitempty"`
	SourceFile    string `json:"sourceFile,omitempty"`
}

// Link returns the PDF deep link for the row, or "" without a source file
func (r Row) Link() string {
	return PDFLink(r.SourceFile, r.OriginalQuote)
}

// TableRows flattens one (model, year) into rows, parties in name order.
// Explicit mode keeps explicit rows only.
func TableRows(data model.PartyData, mode model.FilterMode) []Row {
	var rows []Row
	for _, party := range data.Parties() {
		for _, t := range data[party].FilteredTopics(mode) {
			rows = append(rows, Row{
				Party:         party,
				Category:      t.Category,
				Topic:         t.Topic,
				OriginalQuote: t.OriginalQuote,
				Location:      cast.ToString(t.Location),
				SourceFile:    t.SourceFile,
			})
		}
	}
	return rows
}

// RowFilter narrows the parties table after a click on the parties chart
type RowFilter struct {
	Party string `json:"party,omitempty"`
	// Category is model.CategoryExplicit, model.CategorySemantic or empty.
	Category string `json:"category,omitempty"`
	Year     string `json:"year,omitempty"`
}

// Matches reports whether r passes the filter. The semantic category matches
// every row that is not explicit. A nil filter matches everything.
func (f *RowFilter) Matches(r Row) bool {
	if f == nil {
		return true
	}
	if f.Party != "" && r.Party != f.Party {
		return false
	}
	switch f.Category {
	case model.CategoryExplicit:
		return model.IsExplicit(r.Category)
	case model.CategorySemantic:
		return !model.IsExplicit(r.Category)
	}
	return true
}

// FilterRows applies the chart filter and then the search term. The search
// matches party, category, topic or quote, case-folded; an empty term matches
// everything. The input is not modified.
func FilterRows(rows []Row, f *RowFilter, term string) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !f.Matches(r) {
			continue
		}
		if term != "" && !containsAny(term, r.Party, r.Category, r.Topic, r.OriginalQuote) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Column names a sortable parties table column
type Column string

const (
	ColumnParty    Column = "party"
	ColumnCategory Column = "category"
	ColumnTopic    Column = "topic"
	ColumnQuote    Column = "originalQuote"
	ColumnLocation Column = "location"
)

// ParseColumn accepts a column name
func ParseColumn(s string) (Column, error) {
	switch c := Column(s); c {
	case ColumnParty, ColumnCategory, ColumnTopic, ColumnQuote, ColumnLocation:
		return c, nil
	case "quote":
		return ColumnQuote, nil
	}
	return "", fmt.Errorf("unknown column %q", s)
}

func (c Column) value(r Row) string {
	switch c {
	case ColumnCategory:
		return r.Category
	case ColumnTopic:
		return r.Topic
	case ColumnQuote:
		return r.OriginalQuote
	case ColumnLocation:
		return r.Location
	default:
		return r.Party
	}
}

// Sort is the parties table ordering
type Sort struct {
	Column Column `json:"column"`
	Desc   bool   `json:"desc"`
}

// Toggle returns the ordering after a click on column: the same column flips
// direction, another column sorts ascending.
func (s Sort) Toggle(column Column) Sort {
	if s.Column == column {
		return Sort{Column: column, Desc: !s.Desc}
	}
	return Sort{Column: column}
}

// SortRows returns rows ordered by the lowercased column value. Equal values
// keep their order.
func SortRows(rows []Row, s Sort) []Row {
	out := append([]Row(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a := strings.ToLower(s.Column.value(out[i]))
		b := strings.ToLower(s.Column.value(out[j]))
		if s.Desc {
			return a > b
		}
		return a < b
	})
	return out
}

// SearchTopics keeps topics whose category, topic or quote contains term
func SearchTopics(topics []model.Topic, term string) []model.Topic {
	out := make([]model.Topic, 0, len(topics))
	for _, t := range topics {
		if term == "" || containsAny(term, t.Category, t.Topic, t.OriginalQuote) {
			out = append(out, t)
		}
	}
	return out
}

// PDFLink builds a text-fragment link into the source PDF that highlights
// quote. It returns "" when either part is missing.
func PDFLink(sourceFile, quote string) string {
	if sourceFile == "" || quote == "" {
		return ""
	}
	phrase := strings.Join(strings.Fields(quote), " ")
	return sourceFile + "#:~:text=" + strings.ReplaceAll(url.QueryEscape(phrase), "+", "%20")
}

func containsAny(term string, fields ...string) bool {
	for _, f := range fields {
		if model.ContainsFold(f, term) {
			return true
		}
	}
	return false
}
