package domain

import (
	"fmt"
	"slices"
	"strings"
)

// CountColumn is the column CountBy writes group sizes to.
const CountColumn = "count"

// PercentageColumn is the column PercentOfGroup writes shares to.
const PercentageColumn = "percentage"

// RankSuffix is appended to a categorical column name to form its rank column.
const RankSuffix = "_orden"

// Reducer names an aggregation over a group's source column.
type Reducer string

const (
	ReduceSum   Reducer = "sum"
	ReduceMean  Reducer = "mean"
	ReduceMax   Reducer = "max"
	ReduceCount Reducer = "count"
)

// Aggregation computes Output from Source with Reducer.
type Aggregation struct {
	Output  string
	Source  string
	Reducer Reducer
}

// Sum, Mean, Max and Count build Aggregations.
func Sum(output, source string) Aggregation   { return Aggregation{output, source, ReduceSum} }
func Mean(output, source string) Aggregation  { return Aggregation{output, source, ReduceMean} }
func Max(output, source string) Aggregation   { return Aggregation{output, source, ReduceMax} }
func Count(output, source string) Aggregation { return Aggregation{output, source, ReduceCount} }

type group struct {
	keys []Value
	rows []Row
}

// partition buckets rows by the composite value of groupKeys, returning the
// groups in first-occurrence order.
func partition(t *Table, groupKeys []string) []*group {
	index := make(map[string]*group)
	var order []*group
	var sb strings.Builder
	for _, r := range t.rows {
		sb.Reset()
		for _, k := range groupKeys {
			sb.WriteString(r[k].groupKey())
			sb.WriteByte('\x1f')
		}
		id := sb.String()
		g, ok := index[id]
		if !ok {
			keys := make([]Value, len(groupKeys))
			for i, k := range groupKeys {
				keys[i] = r[k]
			}
			g = &group{keys: keys}
			index[id] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, r)
	}
	return order
}

// CountBy emits one row per distinct combination of groupKeys with a count
// column. Output order is not part of the contract; sort explicitly.
func CountBy(t *Table, groupKeys ...string) *Table {
	groups := partition(t, groupKeys)
	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		r := make(Row, len(groupKeys)+1)
		for i, k := range groupKeys {
			r[k] = g.keys[i]
		}
		r[CountColumn] = Int(len(g.rows))
		rows = append(rows, r)
	}
	return newTable(append(slices.Clone(groupKeys), CountColumn), rows)
}

// AggregateBy groups t by groupKeys and applies each aggregation per group.
// Sum, mean and max skip null cells; count counts rows. Mean and max of a
// group with no numbers are null, its sum is 0.
func AggregateBy(t *Table, groupKeys []string, aggs []Aggregation) (*Table, error) {
	for _, a := range aggs {
		switch a.Reducer {
		case ReduceSum, ReduceMean, ReduceMax, ReduceCount:
		default:
			return nil, fmt.Errorf("aggregate %q: unknown reducer %q", a.Output, a.Reducer)
		}
	}

	groups := partition(t, groupKeys)
	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		r := make(Row, len(groupKeys)+len(aggs))
		for i, k := range groupKeys {
			r[k] = g.keys[i]
		}
		for _, a := range aggs {
			r[a.Output] = reduce(g.rows, a)
		}
		rows = append(rows, r)
	}

	columns := slices.Clone(groupKeys)
	for _, a := range aggs {
		columns = append(columns, a.Output)
	}
	return newTable(columns, rows), nil
}

func reduce(rows []Row, a Aggregation) Value {
	if a.Reducer == ReduceCount {
		return Int(len(rows))
	}
	var (
		sum  float64
		best float64
		n    int
	)
	for _, r := range rows {
		f, ok := r[a.Source].AsFloat()
		if !ok {
			continue
		}
		if n == 0 || f > best {
			best = f
		}
		sum += f
		n++
	}
	switch a.Reducer {
	case ReduceSum:
		return Num(sum)
	case ReduceMean:
		if n == 0 {
			return Null()
		}
		return Num(sum / float64(n))
	default:
		if n == 0 {
			return Null()
		}
		return Num(best)
	}
}

// PercentOfGroup adds a percentage column holding 100*count divided by the
// sum of countColumn across rows sharing groupKey. Shares within each group
// add up to 100. Rows whose group sums to zero get a null percentage.
func PercentOfGroup(t *Table, groupKey, countColumn string) *Table {
	totals := make(map[string]float64)
	for _, r := range t.rows {
		if f, ok := r[countColumn].AsFloat(); ok {
			totals[r[groupKey].groupKey()] += f
		}
	}
	return WithColumn(t, PercentageColumn, func(r Row) Value {
		f, ok := r[countColumn].AsFloat()
		total := totals[r[groupKey].groupKey()]
		if !ok || total == 0 {
			return Null()
		}
		return Num(100 * f / total)
	})
}

// OrderedCategoricalSort ranks column against order, writes the rank to
// column+RankSuffix, and stable-sorts by secondaryKeys then rank. A value
// missing from order fails with UnknownCategoryError instead of being dropped,
// since a silent drop would skew any percentages shown next to it.
// Sorting an already sorted table returns the same order.
func OrderedCategoricalSort(t *Table, column string, order CategoryOrder, secondaryKeys ...string) (*Table, error) {
	for _, r := range t.rows {
		if _, ok := order.Rank(r[column].String()); !ok {
			return nil, &UnknownCategoryError{Column: column, Value: r[column].String(), Ordering: order.Name()}
		}
	}
	rankColumn := column + RankSuffix
	ranked := WithColumn(t, rankColumn, func(r Row) Value {
		rank, _ := order.Rank(r[column].String())
		return Int(rank)
	})

	keys := make([]SortKey, 0, len(secondaryKeys)+1)
	for _, k := range secondaryKeys {
		keys = append(keys, Asc(k))
	}
	keys = append(keys, Asc(rankColumn))
	return SortBy(ranked, keys...), nil
}

// ReindexToCanonicalKeys returns exactly one row per canonical key, in
// canonical order. Keys absent from t get fill in every other column, so for
// example months without fires still show up on a month axis. When t holds a
// key more than once the first row wins. Rows whose key is not canonical are
// dropped.
func ReindexToCanonicalKeys(t *Table, groupKey string, canonical []Value, fill Value) *Table {
	byKey := make(map[string]Row, len(t.rows))
	for _, r := range t.rows {
		k := r[groupKey].groupKey()
		if _, seen := byKey[k]; !seen {
			byKey[k] = r
		}
	}

	columns := t.columns
	if !slices.Contains(columns, groupKey) {
		columns = append([]string{groupKey}, columns...)
	}

	rows := make([]Row, len(canonical))
	for i, key := range canonical {
		if r, ok := byKey[key.groupKey()]; ok {
			rows[i] = r.clone()
			continue
		}
		r := make(Row, len(columns))
		for _, c := range columns {
			r[c] = fill
		}
		r[groupKey] = key
		rows[i] = r
	}
	return newTable(slices.Clone(columns), rows)
}
