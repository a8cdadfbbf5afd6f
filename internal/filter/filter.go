// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"reflect"
	"time"

	"github.com/pdiddy/harvest/pkg/types"
)

// DefaultKeywordField is the field FromMap treats as the keyword list.
const DefaultKeywordField = "keywords"

// Record exposes named fields to the filter engine. ok is false when the
// record has no field of that name.
type Record interface {
	Field(name string) (value any, ok bool)
}

// Criteria maps a field name to the criterion its value must satisfy.
type Criteria map[string]Criterion

// Active reports whether any criterion would exclude records.
func (c Criteria) Active() bool {
	for _, crit := range c {
		if crit != nil && !crit.Empty() {
			return true
		}
	}
	return false
}

// Match reports whether r satisfies every criterion.
func (c Criteria) Match(r Record) bool {
	for field, crit := range c {
		v, ok := r.Field(field)
		if !Satisfies(crit, v, ok) {
			return false
		}
	}
	return true
}

// Apply returns the records of data that satisfy every criterion, in input
// order. When no criterion is active data is returned as is.
func Apply[T Record](data []T, c Criteria) []T {
	if !c.Active() {
		return data
	}
	out := make([]T, 0, len(data))
	for _, r := range data {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// FromMap converts a loosely typed criteria map into Criteria. It is the
// only place value shapes are inspected:
//
//   - nil, "" and empty slices are skipped
//   - a string slice under keywordField becomes KeywordsContainAll
//   - any other string slice becomes ContainsAll
//   - a types.DateRange, DateRange, or a map with "startDate"/"endDate"
//     keys becomes DateRange
//   - numbers become MinValue
//   - anything else becomes Equals
//
// An empty keywordField means DefaultKeywordField.
func FromMap(raw map[string]any, keywordField string) Criteria {
	if keywordField == "" {
		keywordField = DefaultKeywordField
	}
	out := make(Criteria, len(raw))
	for field, v := range raw {
		crit := fromValue(field, v, keywordField)
		if crit == nil || crit.Empty() {
			continue
		}
		out[field] = crit
	}
	return out
}

func fromValue(field string, v any, keywordField string) Criterion {
	switch val := v.(type) {
	case nil:
		return nil
	case Criterion:
		return val
	case []string:
		if field == keywordField {
			return KeywordsContainAll{Keywords: val}
		}
		return ContainsAll{Values: val}
	case []any:
		strs, ok := stringSlice(val)
		if !ok {
			return Equals{Value: v}
		}
		return fromValue(field, strs, keywordField)
	case types.DateRange:
		return DateRange{Start: val.Start, End: val.End}
	case map[string]any:
		if dr, ok := dateRangeFromMap(val); ok {
			return dr
		}
		return Equals{Value: v}
	}

	if n, ok := toFloat(v); ok {
		return MinValue{Min: n}
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice && rv.Len() == 0 {
		return nil
	}
	return Equals{Value: v}
}

func stringSlice(vals []any) ([]string, bool) {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func dateRangeFromMap(m map[string]any) (DateRange, bool) {
	start, hasStart := m["startDate"]
	end, hasEnd := m["endDate"]
	if !hasStart || !hasEnd {
		return DateRange{}, false
	}
	var dr DateRange
	if t, ok := parseDate(start); ok {
		dr.Start = t
	}
	if t, ok := parseDate(end); ok {
		dr.End = t
	}
	return dr, true
}

// PaperCriteria builds the criteria for a paper filter selection: keywords
// on "keywords", methodology types on "methodologyType", the date range on
// "publicationDate" and the citation threshold on "citationCount".
func PaperCriteria(sel types.FilterCriteria) Criteria {
	c := Criteria{
		"citationCount": MinValue{Min: float64(sel.MinCitations)},
	}
	if len(sel.Keywords) > 0 {
		c["keywords"] = KeywordsContainAll{Keywords: sel.Keywords}
	}
	if len(sel.MethodologyTypes) > 0 {
		vals := make([]string, len(sel.MethodologyTypes))
		for i, m := range sel.MethodologyTypes {
			vals[i] = string(m)
		}
		c["methodologyType"] = AnyOf{Values: vals}
	}
	if !sel.DateRange.IsZero() {
		c["publicationDate"] = DateRange{Start: sel.DateRange.Start, End: endOfDay(sel.DateRange.End)}
	}
	return c
}

// Papers filters papers by a filter selection.
func Papers(papers []types.ResearchPaper, sel types.FilterCriteria) []types.ResearchPaper {
	c := PaperCriteria(sel)
	// A zero threshold admits every paper since citation counts are never
	// negative; drop it so an otherwise empty selection is the identity.
	if sel.MinCitations <= 0 {
		delete(c, "citationCount")
	}
	return Apply(papers, c)
}

// endOfDay keeps a date-only end bound inclusive for records that carry a
// time of day. A zero time stays zero.
func endOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}
