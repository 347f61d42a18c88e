package chart

import (
	"math"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

// Chart IDs on the Spain page.
const (
	FiresByRegionID    = "fires_by_region"
	FiresByFiveYearsID = "fires_by_five_years"
	FiresByYearID      = "fires_by_year"
	NDVIBubblesID      = "ndvi_bubbles"
	SeriousFiresNDVIID = "serious_fires_ndvi"
	PreviousNDVIID     = "previous_ndvi"
)

// Derived columns the Spain builders read.
const (
	ColTotal          = "total"
	ColCount          = domain.CountColumn
	ColFiveYearBucket = "rango_5_anios"
	ColTotalFires     = "total_incendios"
	ColTotalHectares  = "total_hectareas"
	ColNDVIAvg        = "ndvi"
	ColFireCount      = "n_incendios"
	ColLossSum        = domain.ColAreaLost + "_sum"
	ColLossMean       = domain.ColAreaLost + "_mean"
	ColLossMax        = domain.ColAreaLost + "_max"
	ColNDVIPrevMean   = domain.ColNDVIPrevious + "_mean"
)

// FiresByRegion draws fire counts per region, tallest bar first.
// Input columns: comunidad, total.
func FiresByRegion(t *domain.Table, s Style) Spec {
	const title = "Número total de incendios por Comunidad Autónoma"
	if t.Empty() {
		return Placeholder(FiresByRegionID, s, title)
	}
	x := field(domain.ColRegion, Nominal, "Comunidad Autónoma")
	x.Sort = "-y"
	x.Axis = &Axis{LabelAngle: ptr(-30.0)}
	return Spec{
		Schema: SchemaURL,
		ID:     FiresByRegionID,
		Title:  s.title(title),
		Width:  s.width(800),
		Height: s.height(500),
		Data:   inline(t),
		Mark:   &Mark{Type: "bar", Color: s.color("bar", "")},
		Encoding: &Encoding{
			X:       x,
			Y:       field(ColTotal, Quantitative, "Número total de incendios"),
			Tooltip: []Channel{tip(domain.ColRegion, Nominal, "Comunidad"), tip(ColTotal, Quantitative, "Incendios")},
		},
	}
}

// FiresByFiveYears layers fire counts (bars) and burned area (line) per
// five-year bucket on independent y scales.
// Input columns: rango_5_anios, count, total.
func FiresByFiveYears(t *domain.Table, s Style) Spec {
	const title = "Superficie total perdida y número de incendios por rango de 5 años"
	if t.Empty() {
		return Placeholder(FiresByFiveYearsID, s, title)
	}
	x := field(ColFiveYearBucket, Ordinal, "Rango de años")
	bar := Spec{
		Mark: &Mark{Type: "bar", Color: s.color("count", "#6BAED6")},
		Encoding: &Encoding{
			X:       x,
			Y:       field(ColCount, Quantitative, "Número total de incendios"),
			Tooltip: []Channel{tip(ColFiveYearBucket, Ordinal, "Rango de años"), tip(ColCount, Quantitative, "Número de incendios")},
		},
	}
	line := Spec{
		Mark: &Mark{Type: "line", Color: s.color("total", "purple"), StrokeWidth: 3},
		Encoding: &Encoding{
			X:       x,
			Y:       field(ColTotal, Quantitative, "Hectáreas quemadas"),
			Tooltip: []Channel{tip(ColFiveYearBucket, Ordinal, "Rango de años"), tip(ColTotal, Quantitative, "Hectáreas quemadas")},
		},
	}
	return Spec{
		Schema:  SchemaURL,
		ID:      FiresByFiveYearsID,
		Title:   s.title(title),
		Width:   s.width(800),
		Height:  s.height(500),
		Data:    inline(t),
		Layer:   []Spec{bar, line},
		Resolve: independent("y"),
	}
}

// HoverParam is the point selection that highlights one year across both
// panels of the per-year chart.
const HoverParam = "hover"

// FiresByYear stacks two panels, fire counts and burned area per year, that
// share the x axis. Hovering a year shows its point and a guide rule.
// Input columns: anio, count, total.
func FiresByYear(t *domain.Table, s Style) Spec {
	const title = "Superficie total perdida y número de incendios por año"
	if t.Empty() {
		return Placeholder(FiresByYearID, s, title)
	}
	x := field(domain.ColYear, Ordinal, "Año")
	width := s.width(800)
	height := s.height(250)
	highlight := s.color("highlight", "#F58518")

	panel := func(valueField, valueTitle, barColor string, withParam bool) Spec {
		selector := Spec{
			Mark: &Mark{Type: "rect", Opacity: ptr(0.0)},
			Encoding: &Encoding{
				X:       x,
				Opacity: &Channel{Value: 0},
				Tooltip: []Channel{
					tip(domain.ColYear, Ordinal, "Año"),
					tip(ColCount, Quantitative, "Número de incendios"),
					tip(ColTotal, Quantitative, "Hectáreas quemadas"),
				},
			},
		}
		if withParam {
			selector.Params = []Param{{
				Name:   HoverParam,
				Select: &Selection{Type: "point", Fields: []string{domain.ColYear}, On: "pointermove"},
			}}
		}
		hovered := func(on float64) *Channel {
			return &Channel{Condition: &Condition{Param: HoverParam, Empty: ptr(false), Value: on}, Value: 0}
		}
		points := &Channel{Field: valueField, Type: Quantitative, HideAxis: true}
		return Spec{
			Width:  width,
			Height: height,
			Layer: []Spec{
				{
					Mark:     &Mark{Type: "bar", Color: barColor},
					Encoding: &Encoding{X: x, Y: field(valueField, Quantitative, valueTitle)},
				},
				selector,
				{
					Mark:     &Mark{Type: "point", Color: highlight},
					Encoding: &Encoding{X: x, Y: points, Opacity: hovered(1)},
				},
				{
					Mark:     &Mark{Type: "rule", Color: s.color("rule", "gray")},
					Encoding: &Encoding{X: x, Opacity: hovered(0.4)},
				},
			},
		}
	}

	return Spec{
		Schema: SchemaURL,
		ID:     FiresByYearID,
		Title:  s.title(title),
		Data:   inline(t),
		VConcat: []Spec{
			panel(ColCount, "Número total de incendios", s.color("count", "#6BAED6"), true),
			panel(ColTotal, "Número de hectáreas quemadas", s.color("total", "purple"), false),
		},
		Resolve: &Resolve{Scale: map[string]string{"x": "shared", "y": "independent"}},
	}
}

// NDVIBubbles places each region by mean NDVI and fire count, sized by
// burned area. Both axes include zero and run 10% past the data.
// Input columns: comunidad_y, total_incendios, total_hectareas, ndvi.
func NDVIBubbles(t *domain.Table, s Style) Spec {
	const title = "Incendios, hectáreas quemadas y NDVI medio por comunidad"
	if t.Empty() {
		return Placeholder(NDVIBubblesID, s, title)
	}
	x := field(ColNDVIAvg, Quantitative, "NDVI")
	x.Scale = paddedDomain(t, ColNDVIAvg)
	y := field(ColTotalFires, Quantitative, "Número total de incendios")
	y.Scale = paddedDomain(t, ColTotalFires)
	size := field(ColTotalHectares, Quantitative, "Hectáreas quemadas")
	size.Scale = &Scale{Range: []any{300, 5000}}
	color := field(domain.ColRegionMerged, Nominal, "Comunidad")
	color.Scale = &Scale{Scheme: s.scheme("category20")}

	ndviTip := tip(ColNDVIAvg, Quantitative, "NDVI medio")
	ndviTip.Format = ".2f"
	return Spec{
		Schema: SchemaURL,
		ID:     NDVIBubblesID,
		Title:  s.title(title),
		Width:  s.width(800),
		Height: s.height(600),
		Data:   inline(t),
		Mark:   &Mark{Type: "circle", Opacity: ptr(0.75)},
		Encoding: &Encoding{
			X:     x,
			Y:     y,
			Size:  size,
			Color: color,
			Tooltip: []Channel{
				tip(domain.ColRegionMerged, Nominal, "Comunidad"),
				tip(ColTotalFires, Quantitative, "Total incendios"),
				tip(ColTotalHectares, Quantitative, "Total hectáreas"),
				ndviTip,
			},
		},
	}
}

// paddedDomain returns a domain that always includes zero and runs 10% past
// the data away from it, or nil when the column holds no nonzero number.
func paddedDomain(t *domain.Table, column string) *Scale {
	lo, ok := t.Min(column)
	if !ok {
		return nil
	}
	hi, _ := t.Max(column)
	lo, hi = min(lo, 0), max(hi, 0)
	if lo == hi {
		return nil
	}
	pad := func(v float64) float64 { return math.Round(v*1.1*1e6) / 1e6 }
	return &Scale{Domain: []any{pad(lo), pad(hi)}}
}

// SeriousFiresNDVI overlays the monthly count of serious fires with monthly
// NDVI, months in calendar order on a shared x axis.
// Inputs: serious has mesdeteccion, count; ndvi has mesdeteccion, NDVI.
func SeriousFiresNDVI(serious, ndvi *domain.Table, s Style) Spec {
	const title = "Relación entre incendios graves y NDVI medio mensual"
	if serious.Empty() && ndvi.Empty() {
		return Placeholder(SeriousFiresNDVIID, s, title)
	}
	month := func() *Channel {
		c := field(domain.ColMonth, Ordinal, "Mes")
		c.Sort = domain.Months.Values()
		return c
	}
	fires := Spec{
		Data: inline(serious),
		Mark: &Mark{Type: "line", Color: s.color("fires", "orange")},
		Encoding: &Encoding{
			X:       month(),
			Y:       field(ColCount, Quantitative, "Número de incendios graves"),
			Tooltip: []Channel{tip(domain.ColMonth, Ordinal, "Mes"), tip(ColCount, Quantitative, "Incendios graves")},
		},
	}
	veg := Spec{
		Data: inline(ndvi),
		Mark: &Mark{Type: "line", Color: s.color("ndvi", "green")},
		Encoding: &Encoding{
			X:       month(),
			Y:       field(domain.ColNDVI, Quantitative, "NDVI"),
			Tooltip: []Channel{tip(domain.ColMonth, Ordinal, "Mes"), tip(domain.ColNDVI, Quantitative, "NDVI")},
		},
	}
	return Spec{
		Schema:  SchemaURL,
		ID:      SeriousFiresNDVIID,
		Title:   s.title(title),
		Width:   s.width(800),
		Height:  s.height(500),
		Layer:   []Spec{fires, veg},
		Resolve: &Resolve{Scale: map[string]string{"x": "shared", "y": "independent"}},
	}
}

// PreviousNDVI scatters fortnight/year/province groups by fire count and
// burned area, colored by the NDVI measured before the fires.
// Input columns: provincia, n_incendios, perdidassuperficiales_sum, NDVI_previo_mean.
func PreviousNDVI(t *domain.Table, s Style) Spec {
	const title = "Relación entre incendios, hectáreas quemadas y NDVI por comunidad y año"
	if t.Empty() {
		return Placeholder(PreviousNDVIID, s, title)
	}
	color := field(ColNDVIPrevMean, Quantitative, "NDVI medio")
	color.Scale = &Scale{Scheme: s.scheme("viridis")}
	return Spec{
		Schema: SchemaURL,
		ID:     PreviousNDVIID,
		Title:  s.title(title),
		Width:  s.width(700),
		Height: s.height(500),
		Data:   inline(t),
		Mark:   &Mark{Type: "circle", Size: 100},
		Encoding: &Encoding{
			X:     field(ColFireCount, Quantitative, "Número de incendios"),
			Y:     field(ColLossSum, Quantitative, "Hectáreas quemadas"),
			Color: color,
			Tooltip: []Channel{
				tip(domain.ColProvince, Nominal, "Provincia"),
				tip(ColFireCount, Quantitative, "Número de incendios"),
				tip(ColLossSum, Quantitative, "Hectáreas quemadas"),
				tip(ColNDVIPrevMean, Quantitative, "NDVI previo medio"),
			},
		},
	}
}
