package contracts

// Table is a named table of string cells, the unit of exchange with the
// external table store. Raw exports arrive as Tables and the three output
// frames leave as Tables.
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns a lookup from column name to position.
// Missing columns are simply absent from the map.
func (t *Table) ColumnIndex() map[string]int {
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		idx[c] = i
	}
	return idx
}

// Cell returns the value at (row, col) or "" when the row is ragged.
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}
