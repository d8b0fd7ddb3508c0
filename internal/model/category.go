package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// FilterMode selects which finding categories take part in an aggregation.
type FilterMode string

const (
	FilterAll      FilterMode = "all"
	FilterExplicit FilterMode = "explicit"
)

// Category markers as they appear (in varying case) in analyzer output,
// e.g. "Explizites Verbot" and "Semantisches Verbot".
const (
	CategoryExplicit = "explizit"
	CategorySemantic = "semantisch"
)

// ParseFilterMode accepts "all" and "explicit" (plus the German "explizit").
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "alle":
		return FilterAll, nil
	case "explicit", "explizit":
		return FilterExplicit, nil
	default:
		return "", fmt.Errorf("unknown filter mode %q (want all or explicit)", s)
	}
}

// IsExplicit reports whether category marks an explicit ban.
func IsExplicit(category string) bool {
	return ContainsFold(category, CategoryExplicit)
}

// IsSemantic reports whether category marks a semantic (inferred) ban.
func IsSemantic(category string) bool {
	return ContainsFold(category, CategorySemantic)
}

// Matches reports whether a finding with the given category passes the mode.
func (m FilterMode) Matches(category string) bool {
	if m == FilterExplicit {
		return IsExplicit(category)
	}
	return true
}

// ContainsFold reports whether substr occurs in s under Unicode case folding.
// An empty s never matches.
func ContainsFold(s, substr string) bool {
	if s == "" {
		return false
	}
	// Casers carry state and must not be shared across goroutines.
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}
