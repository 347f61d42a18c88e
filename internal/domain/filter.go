package domain

import (
	"fmt"
	"slices"
)

// FilterByYearRange keeps rows whose year column lies in [from, to], both ends
// inclusive. The year is read from a whole-number cell or from a date cell.
// Rows without a readable year are dropped. A reversed range (from > to) is a
// legal selection that simply matches nothing.
func FilterByYearRange(t *Table, yearColumn string, from, to int) *Table {
	if from > to {
		return t.emptyLike()
	}
	return FilterRows(t, func(r Row) bool {
		y, ok := r[yearColumn].Year()
		return ok && y >= from && y <= to
	})
}

// FilterRows keeps the rows matching pred, preserving order.
func FilterRows(t *Table, pred func(Row) bool) *Table {
	rows := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		if pred(r) {
			rows = append(rows, r.clone())
		}
	}
	return newTable(slices.Clone(t.columns), rows)
}

// WithColumn returns a copy of t with column name set to fn(row) on every row.
// An existing column of the same name is replaced in place.
func WithColumn(t *Table, name string, fn func(Row) Value) *Table {
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		nr := r.clone()
		nr[name] = fn(r)
		rows[i] = nr
	}
	return newTable(appendColumn(t.columns, name), rows)
}

// SortKey names a column and direction for SortBy.
type SortKey struct {
	Column string
	Desc   bool
}

// Asc sorts a column ascending.
func Asc(column string) SortKey { return SortKey{Column: column} }

// Desc sorts a column descending.
func Desc(column string) SortKey { return SortKey{Column: column, Desc: true} }

// SortBy stable-sorts rows by the given keys. Nulls sort last in both directions.
func SortBy(t *Table, keys ...SortKey) *Table {
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = r.clone()
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		for _, k := range keys {
			av, bv := a[k.Column], b[k.Column]
			if av.IsNull() || bv.IsNull() {
				if c := av.Compare(bv); c != 0 {
					return c
				}
				continue
			}
			c := av.Compare(bv)
			if k.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return newTable(slices.Clone(t.columns), rows)
}

// YearBounds returns the smallest and largest year in a column, used as the
// default bounds of the year-range selector.
func YearBounds(t *Table, yearColumn string) (minYear, maxYear int, ok bool) {
	for _, r := range t.rows {
		y, isYear := r[yearColumn].Year()
		if !isYear {
			continue
		}
		if !ok {
			minYear, maxYear, ok = y, y, true
			continue
		}
		minYear = min(minYear, y)
		maxYear = max(maxYear, y)
	}
	return minYear, maxYear, ok
}

// RollingMean adds outputColumn holding the trailing mean of valueColumn.
// Row i averages the non-null numbers in rows [max(0, i-window+1), i]; when
// fewer than minPeriods numbers are available (or none at all) the result is
// null. With window 30 and minPeriods 1 the first rows get a cumulative mean.
//
// Rows must already be sorted ascending by date; use SortBy first.
func RollingMean(t *Table, valueColumn, outputColumn string, window, minPeriods int) (*Table, error) {
	if window < 1 || minPeriods < 0 || minPeriods > window {
		return nil, fmt.Errorf("rolling mean over %q (window=%d, min_periods=%d): %w",
			valueColumn, window, minPeriods, ErrInvalidWindow)
	}

	values := make([]float64, len(t.rows))
	present := make([]bool, len(t.rows))
	for i, r := range t.rows {
		values[i], present[i] = r[valueColumn].AsFloat()
	}

	rows := make([]Row, len(t.rows))
	var (
		sum   float64
		count int
	)
	for i, r := range t.rows {
		if present[i] {
			sum += values[i]
			count++
		}
		if j := i - window; j >= 0 && present[j] {
			sum -= values[j]
			count--
		}

		nr := r.clone()
		if count == 0 || count < minPeriods {
			nr[outputColumn] = Null()
		} else {
			nr[outputColumn] = Num(sum / float64(count))
		}
		rows[i] = nr
	}
	return newTable(appendColumn(t.columns, outputColumn), rows), nil
}
