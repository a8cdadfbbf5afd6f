// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package browse

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/harvest/pkg/types"
)

// CriteriaFile is a filter selection saved to disk so it can be reapplied
// to another collection.
type CriteriaFile struct {
	Criteria CriteriaParams `yaml:"criteria"`
	SavedAt  time.Time      `yaml:"saved_at"`
}

// CriteriaParams is the serializable form of types.FilterCriteria.
type CriteriaParams struct {
	From          string   `yaml:"from,omitempty"`
	To            string   `yaml:"to,omitempty"`
	Methodologies []string `yaml:"methodologies,omitempty"`
	Keywords      []string `yaml:"keywords,omitempty"`
	MinCitations  int      `yaml:"min_citations,omitempty"`
}

const dateFmt = "2006-01-02"

// WriteCriteriaFile saves sel to path as YAML.
func WriteCriteriaFile(path string, sel types.FilterCriteria) error {
	cf := CriteriaFile{
		Criteria: CriteriaParams{
			Keywords:     sel.Keywords,
			MinCitations: sel.MinCitations,
		},
		SavedAt: time.Now().UTC().Truncate(time.Second),
	}
	for _, m := range sel.MethodologyTypes {
		cf.Criteria.Methodologies = append(cf.Criteria.Methodologies, string(m))
	}
	if !sel.DateRange.Start.IsZero() {
		cf.Criteria.From = sel.DateRange.Start.Format(dateFmt)
	}
	if !sel.DateRange.End.IsZero() {
		cf.Criteria.To = sel.DateRange.End.Format(dateFmt)
	}

	data, err := yaml.Marshal(&cf)
	if err != nil {
		return fmt.Errorf("marshaling criteria file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadCriteriaFile loads a selection saved by WriteCriteriaFile.
func ReadCriteriaFile(path string) (types.FilterCriteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.FilterCriteria{}, fmt.Errorf("reading criteria file: %w", err)
	}
	var cf CriteriaFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return types.FilterCriteria{}, fmt.Errorf("parsing criteria file: %w", err)
	}
	return cf.Criteria.ToCriteria()
}

// ToCriteria converts stored params back into a selection.
func (p CriteriaParams) ToCriteria() (types.FilterCriteria, error) {
	sel := types.FilterCriteria{
		Keywords:     p.Keywords,
		MinCitations: max(p.MinCitations, 0),
	}
	for _, s := range p.Methodologies {
		m, err := types.ParseMethodologyType(s)
		if err != nil {
			return sel, err
		}
		sel.MethodologyTypes = append(sel.MethodologyTypes, m)
	}
	if p.From != "" {
		t, err := time.Parse(dateFmt, p.From)
		if err != nil {
			return sel, fmt.Errorf("invalid from %q: %w", p.From, err)
		}
		sel.DateRange.Start = t
	}
	if p.To != "" {
		t, err := time.Parse(dateFmt, p.To)
		if err != nil {
			return sel, fmt.Errorf("invalid to %q: %w", p.To, err)
		}
		sel.DateRange.End = t
	}
	return sel, nil
}
