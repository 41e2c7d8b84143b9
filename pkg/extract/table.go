package extract

import "fmt"

// Table is a fully materialized tabular extract: the source file's header and
// every row, in file order. Cells hold the raw source text; an empty cell is
// a null.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string

	cols map[string]int
}

// NewTable builds a Table and its column index. Duplicate header names keep
// the first position.
func NewTable(name string, header []string, rows [][]string) *Table {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if _, ok := cols[h]; !ok {
			cols[h] = i
		}
	}
	return &Table{
		Name:   name,
		Header: header,
		Rows:   rows,
		cols:   cols,
	}
}

// Column returns the index of the named column. A missing column is a
// structural error: the source file does not have the shape the pipeline
// requires, so the caller is expected to abort the run.
func (t *Table) Column(name string) (int, error) {
	i, ok := t.cols[name]
	if !ok {
		return 0, fmt.Errorf("table %s: required column %q not found", t.Name, name)
	}
	return i, nil
}
