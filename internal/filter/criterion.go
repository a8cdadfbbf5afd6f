// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter selects records that satisfy every criterion of a
// multi-field filter. Criteria are a closed set of variants matched by type
// switch, so an array-valued criterion always says whether it means
// contains-all, keyword contains-all, or set membership.
package filter

import (
	"reflect"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Criterion is one condition on one record field. The variants are Equals,
// MinValue, ContainsAll, KeywordsContainAll, AnyOf and DateRange.
type Criterion interface {
	// Empty reports whether the criterion filters nothing.
	Empty() bool

	criterion()
}

// Equals matches a field deeply equal to Value. A nil or "" Value is empty.
type Equals struct {
	Value any
}

// MinValue matches a numeric field greater than or equal to Min.
type MinValue struct {
	Min float64
}

// ContainsAll matches a string-slice field that holds every value in
// Values. The field may hold additional values.
type ContainsAll struct {
	Values []string
}

// KeywordsContainAll is ContainsAll over keyword names with
// case-insensitive, whitespace-trimmed comparison.
type KeywordsContainAll struct {
	Keywords []string
}

// AnyOf matches a scalar string field equal to one of Values.
type AnyOf struct {
	Values []string
}

// DateRange matches a date field inside [Start, End]. A zero bound is open.
// A field that is missing or does not parse as a date never matches.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (c Equals) Empty() bool {
	if c.Value == nil {
		return true
	}
	s, ok := c.Value.(string)
	return ok && s == ""
}

func (MinValue) Empty() bool { return false }

func (c ContainsAll) Empty() bool { return len(c.Values) == 0 }

func (c KeywordsContainAll) Empty() bool { return len(c.Keywords) == 0 }

func (c AnyOf) Empty() bool { return len(c.Values) == 0 }

func (c DateRange) Empty() bool { return c.Start.IsZero() && c.End.IsZero() }

func (Equals) criterion() {}

func (MinValue) criterion() {}

func (ContainsAll) criterion() {}

func (KeywordsContainAll) criterion() {}

func (AnyOf) criterion() {}

func (DateRange) criterion() {}

// Satisfies reports whether a field value satisfies c. ok is false when the
// record has no such field.
func Satisfies(c Criterion, v any, ok bool) bool {
	if c == nil || c.Empty() {
		return true
	}
	if !ok {
		return false
	}

	switch c := c.(type) {
	case Equals:
		return reflect.DeepEqual(v, c.Value)
	case MinValue:
		n, isNum := toFloat(v)
		return isNum && n >= c.Min
	case ContainsAll:
		have, isSlice := v.([]string)
		if !isSlice {
			return false
		}
		return containsAll(have, c.Values, func(s string) string { return s })
	case KeywordsContainAll:
		have, isSlice := v.([]string)
		if !isSlice {
			return false
		}
		return containsAll(have, c.Keywords, normalizeKeyword)
	case AnyOf:
		s, isStr := v.(string)
		if !isStr {
			return false
		}
		for _, want := range c.Values {
			if s == want {
				return true
			}
		}
		return false
	case DateRange:
		d, parsed := parseDate(v)
		if !parsed {
			return false
		}
		if !c.Start.IsZero() && d.Before(c.Start) {
			return false
		}
		if !c.End.IsZero() && d.After(c.End) {
			return false
		}
		return true
	default:
		panic("filter: unhandled criterion type " + reflect.TypeOf(c).String())
	}
}

// containsAll reports whether have holds every element of want after both
// sides are passed through norm.
func containsAll(have, want []string, norm func(string) string) bool {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[norm(h)] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[norm(w)]; !ok {
			return false
		}
	}
	return true
}

// normalizeKeyword folds a keyword for comparison. Lowercasing both sides
// is equivalent to the capital-case display normalization.
func normalizeKeyword(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CapitalCase upper-cases the first letter and lower-cases the rest, the
// form keywords are displayed and selected in.
func CapitalCase(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01",
	"2006",
}

// parseDate accepts a time.Time or a string in one of dateLayouts. Dates
// without a zone are UTC; a bare year is January 1 of that year.
func parseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, !d.IsZero()
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
