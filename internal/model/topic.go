package model

import "sort"

// Topic is one statement an analyzer extracted from a party manifesto.
type Topic struct {
	Category       string `json:"category"`
	Topic          string `json:"topic"`
	OriginalQuote  string `json:"originalQuote"`
	Location       any    `json:"location,omitempty"` // page number or free text, depending on the analyzer
	Classification string `json:"classification,omitempty"`
	SourceFile     string `json:"sourceFile,omitempty"`
}

// TopicFile is the shape of a per-(model, year, party) results file.
type TopicFile struct {
	Topics []Topic `json:"topics"`
}

// PartyRecord is one (model, year, party) topic list with precomputed counts.
type PartyRecord struct {
	Year          string  `json:"year"`
	Party         string  `json:"party"`
	Topics        []Topic `json:"topics"`
	ExplicitCount int     `json:"explicitCount"`
	SemanticCount int     `json:"semanticCount"`
}

// NewPartyRecord builds a record and counts its categories.
func NewPartyRecord(year, party string, topics []Topic) *PartyRecord {
	r := &PartyRecord{Year: year, Party: party, Topics: topics}
	for _, t := range topics {
		if IsExplicit(t.Category) {
			r.ExplicitCount++
		}
		if IsSemantic(t.Category) {
			r.SemanticCount++
		}
	}
	return r
}

// Clone returns a copy whose topic slice is not shared with r.
func (r *PartyRecord) Clone() *PartyRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Topics = append([]Topic(nil), r.Topics...)
	return &c
}

// FilteredTopics returns the topics passing mode, as a new slice.
func (r *PartyRecord) FilteredTopics(mode FilterMode) []Topic {
	out := make([]Topic, 0, len(r.Topics))
	for _, t := range r.Topics {
		if mode.Matches(t.Category) {
			out = append(out, t)
		}
	}
	return out
}

// PartyData maps party name to its record for one (model, year)
type PartyData map[string]*PartyRecord

// Clone copies d and every record in it.
func (d PartyData) Clone() PartyData {
	out := make(PartyData, len(d))
	for party, r := range d {
		out[party] = r.Clone()
	}
	return out
}

// Parties returns the party names in d, sorted.
func (d PartyData) Parties() []string {
	parties := make([]string, 0, len(d))
	for p := range d {
		parties = append(parties, p)
	}
	sort.Strings(parties)
	return parties
}

// Position is one point on a manifesto's position/score distribution.
type Position struct {
	Pos   float64 `json:"pos"`
	Score float64 `json:"score"`
}

// DistributionRecord is one entry of distribution_analysis.json.
type DistributionRecord struct {
	Year      string     `json:"year"`
	Party     string     `json:"party"`
	Model     string     `json:"model"`
	Positions []Position `json:"positions"`
}
