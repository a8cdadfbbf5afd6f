// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package browse

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/harvest/pkg/types"
)

func TestCriteriaFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "criteria.yaml")
	sel := types.FilterCriteria{
		DateRange: types.DateRange{
			Start: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		MethodologyTypes: []types.MethodologyType{types.MethodologyMixed},
		Keywords:         []string{"Soil"},
		MinCitations:     3,
	}

	require.NoError(t, WriteCriteriaFile(path, sel))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2019-01-01")

	got, err := ReadCriteriaFile(path)
	require.NoError(t, err)
	assert.Equal(t, sel, got)
}

func TestReadCriteriaFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadCriteriaFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading criteria file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("criteria:\n  methodologies: [ethnography]\n"), 0o644))
	_, err = ReadCriteriaFile(bad)
	assert.ErrorContains(t, err, "invalid methodology type")

	badDate := filepath.Join(dir, "date.yaml")
	require.NoError(t, os.WriteFile(badDate, []byte("criteria:\n  from: 2020/01/01\n"), 0o644))
	_, err = ReadCriteriaFile(badDate)
	assert.ErrorContains(t, err, "invalid from")
}
