// Package palette maps party names to chart colors.
package palette

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultColor is used for parties without a color
const DefaultColor = "#333333"

var defaults = map[string]string{
	"grüne":         "#90EE90",
	"cducsu":        "#000000",
	"afd":           "#9b59b6",
	"spd":           "#E3000F",
	"linke":         "#E91E63",
	"fdp":           "#FFED00",
	"piraten":       "#006400",
	"partei":        "#808080",
	"die partei":    "#808080",
	"piratenpartei": "#006400",
}

// aliases maps the display names used in colors.json to palette keys
var aliases = map[string]string{
	"AFD":        "afd",
	"CDU/CSU":    "cducsu",
	"SPD":        "spd",
	"Grüne":      "grüne",
	"FDP":        "fdp",
	"Die Linke":  "linke",
	"Piraten":    "piraten",
	"Die Partei": "partei",
}

// lookup order of Color; the first key contained in the normalized name wins
var matchers = []struct {
	needles []string
	key     string
}{
	{[]string{"grüne"}, "grüne"},
	{[]string{"cdu", "csu"}, "cducsu"},
	{[]string{"afd"}, "afd"},
	{[]string{"spd"}, "spd"},
	{[]string{"linke"}, "linke"},
	{[]string{"fdp"}, "fdp"},
	{[]string{"piraten"}, "piraten"},
	{[]string{"partei"}, "partei"},
}

// Palette is safe for concurrent use
type Palette struct {
	mu     sync.RWMutex
	colors map[string]string
}

// New returns a palette holding the built-in party colors
func New() *Palette {
	colors := make(map[string]string, len(defaults))
	for k, v := range defaults {
		colors[k] = v
	}
	return &Palette{colors: colors}
}

// NormalizeKey lowercases s and keeps only the letters a-z, ä, ö, ü and ß.
// Input is composed to NFC first so decomposed umlauts survive.
func NormalizeKey(s string) string {
	lower := cases.Lower(language.German).String(norm.NFC.String(s))
	var b strings.Builder
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || r == 'ä' || r == 'ö' || r == 'ü' || r == 'ß' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Merge applies a colors.json mapping. Known display names map through the
// alias table, anything else through NormalizeKey. Keys that normalize to
// nothing are ignored.
func (p *Palette) Merge(colors map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for name, color := range colors {
		key, ok := aliases[name]
		if !ok {
			key = NormalizeKey(name)
		}
		if key == "" {
			continue
		}
		p.colors[key] = color
		switch key {
		case "partei":
			p.colors["die partei"] = color
		case "piraten":
			p.colors["piratenpartei"] = color
		}
	}
}

// Color returns the color for a party name
func (p *Palette) Color(party string) string {
	key := NormalizeKey(party)

	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, m := range matchers {
		for _, needle := range m.needles {
			if strings.Contains(key, needle) {
				return p.colors[m.key]
			}
		}
	}
	return DefaultColor
}
