package consensus

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/spf13/cast"

	"github.com/ppiankov/manifesto/internal/model"
)

var errNotNumeric = errors.New("offset is not numeric")

// Normalize coerces a raw finding's offsets into a non-negative interval with
// start <= end. ok is false when either offset cannot be read as a number; the
// caller drops such findings.
func Normalize(raw model.RawFinding) (model.Finding, bool) {
	start, err := coerceOffset(raw.Start)
	if err != nil {
		return model.Finding{}, false
	}
	end, err := coerceOffset(raw.End)
	if err != nil {
		return model.Finding{}, false
	}
	if end < start {
		end = start
	}

	return model.Finding{
		Model:          raw.Model,
		Category:       raw.Category,
		Text:           raw.Text,
		Start:          start,
		End:            end,
		OriginalQuote:  raw.OriginalQuote,
		Topic:          raw.Topic,
		Classification: raw.Classification,
	}, true
}

// NormalizeAll normalizes a batch and reports how many findings were dropped.
func NormalizeAll(raw []model.RawFinding) ([]model.Finding, int) {
	out := make([]model.Finding, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		f, ok := Normalize(r)
		if !ok {
			dropped++
			continue
		}
		out = append(out, f)
	}
	return out, dropped
}

// coerceOffset accepts JSON numbers and numeric strings. Numbers truncate
// toward zero. Strings are read like a leading integer prefix: whitespace,
// an optional sign, an optional 0x prefix, then digits up to the first other
// rune, so "12abc" and "12.9" are 12 and "1e3" is 1. Negative values clamp
// to 0 and values beyond the int range clamp to math.MaxInt.
func coerceOffset(v any) (int, error) {
	switch x := v.(type) {
	case nil, bool:
		return 0, errNotNumeric
	case string:
		return parseLeadingInt(x)
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errNotNumeric, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumeric
	}
	if f < 0 {
		return 0, nil
	}
	if f >= float64(math.MaxInt) {
		return math.MaxInt, nil
	}
	return int(f), nil
}

func parseLeadingInt(s string) (int, error) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}
	base := 10
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	n, digits := 0, 0
	for _, r := range s {
		d := digitValue(r)
		if d < 0 || d >= base {
			break
		}
		digits++
		if n > (math.MaxInt-d)/base {
			n = math.MaxInt
			continue
		}
		n = n*base + d
	}
	if digits == 0 {
		return 0, errNotNumeric
	}
	if negative {
		return 0, nil
	}
	return n, nil
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return -1
}
