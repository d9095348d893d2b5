package models

// Cell is a table value. Valid is false when the value is missing.
type Cell struct {
	Value string
	Valid bool
}

// Table is a dataset aligned to a column schema
type Table struct {
	Columns ColumnSchema
	Rows    [][]Cell
}

// NewTable aligns each row to the schema by position.
// Short rows are padded with missing cells and cells beyond the schema are dropped.
func NewTable(rows Dataset, columns ColumnSchema) *Table {
	t := &Table{
		Columns: append(ColumnSchema(nil), columns...),
		Rows:    make([][]Cell, 0, len(rows)),
	}

	for _, row := range rows {
		if row == nil {
			// nil rows stay fully missing so the empty-row pass can drop them
			t.Rows = append(t.Rows, make([]Cell, len(columns)))
			continue
		}
		cells := make([]Cell, len(columns))
		for i := range cells {
			if i < len(row) {
				cells[i] = Cell{Value: row[i], Valid: true}
			}
		}
		t.Rows = append(t.Rows, cells)
	}

	return t
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Strings returns the row with missing cells rendered as empty strings
func (t *Table) Strings(i int) []string {
	out := make([]string, len(t.Rows[i]))
	for j, c := range t.Rows[i] {
		if c.Valid {
			out[j] = c.Value
		}
	}
	return out
}
