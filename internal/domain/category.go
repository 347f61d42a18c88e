package domain

import "slices"

// CategoryOrder is an explicit rank table for a categorical column.
type CategoryOrder struct {
	name   string
	values []string
	rank   map[string]int
}

// NewCategoryOrder ranks values by their position. Duplicates keep their first rank.
func NewCategoryOrder(name string, values ...string) CategoryOrder {
	rank := make(map[string]int, len(values))
	for i, v := range values {
		if _, ok := rank[v]; !ok {
			rank[v] = i
		}
	}
	return CategoryOrder{name: name, values: slices.Clone(values), rank: rank}
}

func (o CategoryOrder) Name() string { return o.name }

// Rank returns the position of v in the ordering.
func (o CategoryOrder) Rank(v string) (int, bool) {
	r, ok := o.rank[v]
	return r, ok
}

// Values returns the categories in rank order.
func (o CategoryOrder) Values() []string { return slices.Clone(o.values) }

// Keys returns the categories as string values for ReindexToCanonicalKeys.
func (o CategoryOrder) Keys() []Value { return Strs(o.values...) }

func (o CategoryOrder) Len() int { return len(o.values) }

// AirQualityLevels are the six ICA levels from best to worst.
var AirQualityLevels = NewCategoryOrder("air quality level",
	"Buena",
	"Razonablemente buena",
	"Regular",
	"Desfavorable",
	"Muy desfavorable",
	"Extremadamente desfavorable",
)

// Months are the Spanish calendar month names used by mesdeteccion.
var Months = NewCategoryOrder("month",
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
)
