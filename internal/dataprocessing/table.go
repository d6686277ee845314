package dataprocessing

// Table is a lightweight in-memory tabular container used between pipeline
// stages. Cells are string-typed until records are bound; a nil cell marks a
// value that was absent from the source (outer-union fill), as opposed to an
// authored empty string.
type Table struct {
	Columns []string
	Rows    [][]*string
}

// ColumnIndex returns the position of a column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, column name), or nil when the column is
// missing or the cell is null.
func (t *Table) Cell(row int, column string) *string {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return nil
	}
	return t.Rows[row][idx]
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

func strPtr(s string) *string {
	return &s
}
