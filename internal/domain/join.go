package domain

import "slices"

// LeftLookup keeps every row of primary and copies fields from the matching
// row of secondary, where primary[primaryKey] equals secondary[secondaryKey].
// Dates match by calendar day. Secondary keys are expected to be unique; if a
// key repeats, the first secondary row in table order wins. Unmatched primary
// rows get null for every field.
func LeftLookup(primary, secondary *Table, primaryKey, secondaryKey string, fields ...string) *Table {
	index := make(map[string]Row, len(secondary.rows))
	for _, r := range secondary.rows {
		k := r[secondaryKey]
		if k.IsNull() {
			continue
		}
		if _, seen := index[k.joinKey()]; !seen {
			index[k.joinKey()] = r
		}
	}

	columns := slices.Clone(primary.columns)
	for _, f := range fields {
		columns = appendColumn(columns, f)
	}

	rows := make([]Row, len(primary.rows))
	for i, r := range primary.rows {
		nr := r.clone()
		match, ok := index[r[primaryKey].joinKey()]
		if r[primaryKey].IsNull() {
			ok = false
		}
		for _, f := range fields {
			if ok {
				nr[f] = match[f]
			} else {
				nr[f] = Null()
			}
		}
		rows[i] = nr
	}
	return newTable(columns, rows)
}

// DeriveBooleanFlag adds a categorical column set to trueLabel where pred
// holds for the source cell and falseLabel otherwise. The predicate also sees
// null cells, e.g. a day with no recorded fire loss.
func DeriveBooleanFlag(t *Table, source string, pred func(Value) bool, output, trueLabel, falseLabel string) *Table {
	return WithColumn(t, output, func(r Row) Value {
		if pred(r[source]) {
			return Str(trueLabel)
		}
		return Str(falseLabel)
	})
}

// GreaterThan is a predicate that holds for numbers above x. Null and
// non-numeric cells never match.
func GreaterThan(x float64) func(Value) bool {
	return func(v Value) bool {
		f, ok := v.AsFloat()
		return ok && f > x
	}
}
