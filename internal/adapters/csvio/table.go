// Package csvio reads the optimizer's file inputs: the club roster and
// times export, the county standards table, and the JSON event list,
// pre-assignments and run configuration.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// table is a header-addressed CSV reader.
type table struct {
	name    string
	r       *csv.Reader
	columns map[string]int
	line    int
}

func columnKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func newTable(name string, r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &RowError{File: name, Line: 1, Err: fmt.Errorf("%w: empty file", ErrInvalidRow)}
		}
		return nil, &RowError{File: name, Line: 1, Err: err}
	}

	t := &table{name: name, r: cr, columns: make(map[string]int, len(header)), line: 1}
	for i, h := range header {
		k := columnKey(h)
		if _, dup := t.columns[k]; !dup {
			t.columns[k] = i
		}
	}
	for _, req := range required {
		if !t.has(req) {
			return nil, &RowError{File: name, Line: 1, Err: fmt.Errorf("%w: %s", ErrMissingColumn, req)}
		}
	}
	return t, nil
}

func (t *table) has(col string) bool {
	_, ok := t.columns[columnKey(col)]
	return ok
}

// first returns the name of the first present column among alternatives.
func (t *table) first(cols ...string) (string, bool) {
	for _, c := range cols {
		if t.has(c) {
			return c, true
		}
	}
	return "", false
}

// next returns the following record, or io.EOF.
func (t *table) next() ([]string, error) {
	rec, err := t.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &RowError{File: t.name, Line: t.line + 1, Err: err}
	}
	t.line++
	return rec, nil
}

func (t *table) get(rec []string, col string) string {
	i, ok := t.columns[columnKey(col)]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (t *table) rowError(err error) error {
	return &RowError{File: t.name, Line: t.line, Err: err}
}
