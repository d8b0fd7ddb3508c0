package model

// RawFinding is one analyzer's detection as it appears in consensus_analysis.json.
// Start and End are left undecoded because the artifact carries them either as
// JSON numbers or as strings.
type RawFinding struct {
	Model          string `json:"model"`
	Category       string `json:"category"`
	Text           string `json:"text"`
	Start          any    `json:"start"`
	End            any    `json:"end"`
	OriginalQuote  string `json:"original_quote,omitempty"`
	Topic          string `json:"topic,omitempty"`
	Classification string `json:"classification,omitempty"`
}

// Finding is a RawFinding whose offsets have been coerced to a valid interval.
type Finding struct {
	Model          string `json:"model"`
	Category       string `json:"category"`
	Text           string `json:"text"`
	Start          int    `json:"start"`
	End            int    `json:"end"`
	OriginalQuote  string `json:"original_quote,omitempty"`
	Topic          string `json:"topic,omitempty"`
	Classification string `json:"classification,omitempty"`
}

// Cluster is a run of findings whose spans lie within the clustering radius of
// each other.
type Cluster struct {
	Text        string    `json:"text"`
	Start       int       `json:"start"`
	End         int       `json:"end"`
	VoteCount   int       `json:"vote_count"`
	TotalModels int       `json:"total_models"`
	Confidence  float64   `json:"confidence"`
	Models      []string  `json:"models"`
	Findings    []Finding `json:"findings"`
}

// PartyYearConsensus is one party's cross-model findings for one year.
type PartyYearConsensus struct {
	Year         string `json:"year"`
	Party        string `json:"party"`
	PartyDisplay string `json:"party_display"`
	// Models lists every analyzer that processed this document. A nil slice
	// means the artifact did not carry the field.
	Models         []string     `json:"models,omitempty"`
	TotalModels    int          `json:"total_models,omitempty"`
	DensityProfile []float64    `json:"density_profile,omitempty"`
	RawFindings    []RawFinding `json:"raw_findings"`
}

// PartyClusters is the processed, request-scoped view of a PartyYearConsensus.
type PartyClusters struct {
	Year         string    `json:"year"`
	Party        string    `json:"party"`
	PartyDisplay string    `json:"party_display"`
	Models       []string  `json:"models"`
	TotalModels  int       `json:"total_models"`
	Dropped      int       `json:"dropped,omitempty"` // findings excluded for invalid offsets
	Items        []Cluster `json:"items"`
}
