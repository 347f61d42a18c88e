package domain

import "math"

// Band table columns.
const (
	BandPollutantColumn = "contaminante"
	BandLabelColumn     = "label"
	BandMinColumn       = "min"
	BandMaxColumn       = "max"
	BandColorColumn     = "color"
)

// DefaultBandRoundTo is the rounding step for the top band's ceiling.
const DefaultBandRoundTo = 10.0

// BandsFor keeps the band rows of one pollutant, matched on its display label.
func BandsFor(bands *Table, kind PollutantKind) *Table {
	label := kind.Label()
	return FilterRows(bands, func(r Row) bool {
		return r[BandPollutantColumn].String() == label
	})
}

// ClampBands prepares threshold bands for drawing behind a plot whose data
// peaks at observedMax. Bands starting above observedMax are dropped, keeping
// the original order, and the max of the last remaining band is raised to
// ceil((observedMax+roundTo)/roundTo)*roundTo so the top zone always extends
// past the highest point. Every other bound is left as is.
//
// An empty result means the bands do not cover the data and fails with
// NoBandMatchError. A non-positive roundTo falls back to DefaultBandRoundTo.
func ClampBands(bands *Table, observedMax, roundTo float64) (*Table, error) {
	if roundTo <= 0 {
		roundTo = DefaultBandRoundTo
	}

	kept := FilterRows(bands, func(r Row) bool {
		lo, ok := r[BandMinColumn].AsFloat()
		return ok && lo <= observedMax
	})
	if kept.Empty() {
		return nil, &NoBandMatchError{ObservedMax: observedMax, Bands: bands.Len()}
	}

	ceiling := math.Ceil((observedMax+roundTo)/roundTo) * roundTo
	last := len(kept.rows) - 1
	kept.rows[last][BandMaxColumn] = Num(ceiling)
	if !kept.HasColumn(BandMaxColumn) {
		kept.columns = append(kept.columns, BandMaxColumn)
	}
	return kept, nil
}
