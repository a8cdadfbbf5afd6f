// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ErrNotArray is returned for JSON imports that are not an array of objects.
var ErrNotArray = errors.New("JSON must be an array of paper objects")

// ParseJSON reads an array of paper objects shaped like the create
// payload. Authors and keywords are flattened into the same
// "Name (Affiliation); Name" cells a CSV import uses, so one validator
// serves every format. headers are the keys of the first object.
func ParseJSON(r io.Reader) ([]Row, []string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading JSON: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil, nil
	}
	if data[0] != '[' {
		return nil, nil, ErrNotArray
	}

	var objs []map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&objs); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, nil, ErrNotArray
		}
		return nil, nil, fmt.Errorf("parsing JSON: %w", err)
	}

	rows := make([]Row, 0, len(objs))
	for _, obj := range objs {
		if obj == nil {
			return nil, nil, ErrNotArray
		}
		row := make(Row, len(obj))
		for k, v := range obj {
			if cell, ok := jsonCell(k, v); ok {
				row[k] = cell
			}
		}
		rows = append(rows, row)
	}

	var headers []string
	if len(objs) > 0 {
		for k := range objs[0] {
			headers = append(headers, k)
		}
		sort.Strings(headers)
	}
	return rows, headers, nil
}

// jsonCell renders a JSON value as a row cell. Nested objects other than
// author and keyword entries are dropped.
func jsonCell(key string, v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := listItem(key, item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; "), true
	}
	return "", false
}

func listItem(key string, item any) string {
	switch it := item.(type) {
	case string:
		return strings.TrimSpace(it)
	case json.Number:
		return it.String()
	case map[string]any:
		name, _ := it["name"].(string)
		name = strings.TrimSpace(name)
		if key == "authors" {
			if aff, _ := it["affiliation"].(string); strings.TrimSpace(aff) != "" && name != "" {
				return name + " (" + strings.TrimSpace(aff) + ")"
			}
		}
		return name
	}
	return ""
}
