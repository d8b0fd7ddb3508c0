package model

import (
	"sort"
	"strconv"
)

// ConfigEntry locates one party's results file for a (year, model) pair.
type ConfigEntry struct {
	Party            string `json:"party"`
	File             string `json:"file"`
	OriginalFile     string `json:"original_file"`
	ModelDisplayName string `json:"model_display_name,omitempty"`
}

// ArtifactConfig is config.json: year → model → party entries.
type ArtifactConfig map[string]map[string][]ConfigEntry

// Entries returns the party entries declared for (year, model).
func (c ArtifactConfig) Entries(year, model string) ([]ConfigEntry, bool) {
	byModel, ok := c[year]
	if !ok {
		return nil, false
	}
	entries, ok := byModel[model]
	return entries, ok
}

// Years returns all configured years, newest first.
func (c ArtifactConfig) Years() []string {
	years := make([]string, 0, len(c))
	for y := range c {
		years = append(years, y)
	}
	SortYearsDesc(years)
	return years
}

// Models returns every model configured in any year, sorted.
func (c ArtifactConfig) Models() []string {
	seen := make(map[string]bool)
	for _, byModel := range c {
		for m := range byModel {
			seen[m] = true
		}
	}
	return sortedKeys(seen)
}

// ModelsIn returns the models configured for year, sorted.
func (c ArtifactConfig) ModelsIn(year string) []string {
	seen := make(map[string]bool)
	for m := range c[year] {
		seen[m] = true
	}
	return sortedKeys(seen)
}

// Parties returns every party named in any entry, sorted.
func (c ArtifactConfig) Parties() []string {
	seen := make(map[string]bool)
	for _, byModel := range c {
		for _, entries := range byModel {
			for _, e := range entries {
				if e.Party != "" {
					seen[e.Party] = true
				}
			}
		}
	}
	return sortedKeys(seen)
}

// DisplayName returns the first non-empty display name for model, scanning
// years newest first, or model itself.
func (c ArtifactConfig) DisplayName(model string) string {
	for _, y := range c.Years() {
		if entries := c[y][model]; len(entries) > 0 && entries[0].ModelDisplayName != "" {
			return entries[0].ModelDisplayName
		}
	}
	return model
}

// LatestYearFor returns the newest year in which model is configured.
func (c ArtifactConfig) LatestYearFor(model string) (string, bool) {
	for _, y := range c.Years() {
		if _, ok := c[y][model]; ok {
			return y, true
		}
	}
	return "", false
}

// FirstModel returns the alphabetically first model configured for year.
func (c ArtifactConfig) FirstModel(year string) (string, bool) {
	models := c.ModelsIn(year)
	if len(models) == 0 {
		return "", false
	}
	return models[0], true
}

// Pairs lists every configured (year, model) combination.
func (c ArtifactConfig) Pairs() [][2]string {
	var pairs [][2]string
	for _, y := range c.Years() {
		for _, m := range c.ModelsIn(y) {
			pairs = append(pairs, [2]string{y, m})
		}
	}
	return pairs
}

// SortYearsDesc orders year strings numerically, newest first. Non-numeric
// values sort after numeric ones, lexically.
func SortYearsDesc(years []string) {
	sort.SliceStable(years, func(i, j int) bool {
		a, errA := strconv.Atoi(years[i])
		b, errB := strconv.Atoi(years[j])
		switch {
		case errA == nil && errB == nil:
			return a > b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return years[i] < years[j]
		}
	})
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
