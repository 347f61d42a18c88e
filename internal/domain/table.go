package domain

import "slices"

// Row maps column names to cells. Missing columns read as null.
type Row map[string]Value

func (r Row) clone() Row {
	out := make(Row, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an immutable, ordered collection of rows sharing a column list.
type Table struct {
	columns []string
	rows    []Row
}

// NewTable builds a table from a column list and rows. Inputs are copied so
// later changes by the caller do not leak into the table.
func NewTable(columns []string, rows []Row) *Table {
	cp := make([]Row, len(rows))
	for i, r := range rows {
		cp[i] = r.clone()
	}
	return newTable(slices.Clone(columns), cp)
}

// newTable takes ownership of columns and rows without copying.
func newTable(columns []string, rows []Row) *Table {
	if rows == nil {
		rows = []Row{}
	}
	return &Table{columns: columns, rows: rows}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// HasColumn reports whether the table declares the column.
func (t *Table) HasColumn(name string) bool { return slices.Contains(t.columns, name) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.rows) == 0 }

// Value returns the cell at row i, column col.
func (t *Table) Value(i int, col string) Value { return t.rows[i][col] }

// Row returns a copy of row i.
func (t *Table) Row(i int) Row { return t.rows[i].clone() }

// Rows returns copies of all rows.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.clone()
	}
	return out
}

// Column returns every cell of one column in row order.
func (t *Table) Column(name string) []Value {
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[name]
	}
	return out
}

// Max returns the largest numeric cell in a column; ok is false when the
// column holds no numbers.
func (t *Table) Max(name string) (float64, bool) {
	return t.extreme(name, func(a, b float64) bool { return a > b })
}

// Min returns the smallest numeric cell in a column; ok is false when the
// column holds no numbers.
func (t *Table) Min(name string) (float64, bool) {
	return t.extreme(name, func(a, b float64) bool { return a < b })
}

func (t *Table) extreme(name string, better func(a, b float64) bool) (float64, bool) {
	var (
		best  float64
		found bool
	)
	for _, r := range t.rows {
		f, ok := r[name].AsFloat()
		if !ok {
			continue
		}
		if !found || better(f, best) {
			best, found = f, true
		}
	}
	return best, found
}

// Head returns the first n rows, or the whole table when it is shorter.
func (t *Table) Head(n int) *Table {
	n = max(0, min(n, len(t.rows)))
	rows := make([]Row, n)
	for i := range n {
		rows[i] = t.rows[i].clone()
	}
	return newTable(slices.Clone(t.columns), rows)
}

// Records converts the table into plain maps for JSON chart data.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.rows))
	for i, r := range t.rows {
		rec := make(map[string]any, len(t.columns))
		for _, c := range t.columns {
			rec[c] = r[c].Interface()
		}
		out[i] = rec
	}
	return out
}

// emptyLike returns a table with the same columns and no rows.
func (t *Table) emptyLike() *Table {
	return newTable(slices.Clone(t.columns), nil)
}

func appendColumn(columns []string, name string) []string {
	if slices.Contains(columns, name) {
		return slices.Clone(columns)
	}
	out := make([]string, 0, len(columns)+1)
	out = append(out, columns...)
	return append(out, name)
}
