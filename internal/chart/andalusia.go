package chart

import (
	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

// Chart IDs on the Andalusia page.
const (
	AirQualityPiesID = "air_quality_pies"
	PollutantLinesID = "pollutant_lines"
	PollutantBoxesID = "pollutant_boxes"
)

// Smoothed columns the pollutant line chart reads.
const (
	ColLossSmoothed      = domain.ColAreaLost + "_suavizada"
	ColPollutantSmoothed = "contaminante_suavizado"
)

// DefaultAirQualityColors are the ICA level colors, best to worst.
var DefaultAirQualityColors = []string{"#38A2CE", "#32B15E", "#F1E549", "#F28C28", "#D53441", "#A52DA4"}

// AirQualityPies draws one donut per fire flag with the share of days at
// each air-quality level. Colors are keyed by level name in the style and
// fall back to DefaultAirQualityColors.
// Input columns: Incendio, label, count, percentage, label_orden.
func AirQualityPies(t *domain.Table, levels domain.CategoryOrder, s Style) Spec {
	const title = "Distribución de calidad del aire en días con vs sin incendio"
	if t.Empty() {
		return Placeholder(AirQualityPiesID, s, title)
	}
	names := levels.Values()
	palette := make([]string, len(names))
	for i, name := range names {
		fallback := ""
		if i < len(DefaultAirQualityColors) {
			fallback = DefaultAirQualityColors[i]
		}
		palette[i] = s.color(name, fallback)
	}

	color := field(domain.ColAirQuality, Nominal, "Calidad del aire")
	color.Scale = &Scale{Domain: values(names), Range: values(palette)}
	color.Sort = names

	share := tip(domain.PercentageColumn, Quantitative, "Porcentaje (%)")
	share.Format = ".1f"
	return Spec{
		Schema: SchemaURL,
		ID:     AirQualityPiesID,
		Title:  s.title(title),
		Width:  s.width(600),
		Height: s.height(200),
		Data:   inline(t),
		Mark:   &Mark{Type: "arc", InnerRadius: 130, Opacity: ptr(1.0)},
		Encoding: &Encoding{
			Theta: &Channel{Field: domain.CountColumn, Type: Quantitative},
			Color: color,
			Order: &Channel{Field: domain.ColAirQuality + domain.RankSuffix, Type: Quantitative},
			Facet: field(domain.ColFireFlag, Nominal, "¿Hubo incendio?"),
			Tooltip: []Channel{
				tip(domain.ColAirQuality, Nominal, "Nivel de calidad"),
				tip(domain.CountColumn, Quantitative, "Cantidad"),
				share,
			},
		},
	}
}

// PollutantLines overlays the 30-day smoothed burned area and pollutant mean
// on a time axis, each with its own y scale.
// Inputs: fires has fecha, perdidassuperficiales_suavizada; readings has
// FECHA, contaminante_suavizado.
func PollutantLines(fires, readings *domain.Table, kind domain.PollutantKind, s Style) Spec {
	title := "Evolución de incendios vs " + kind.Label()
	if fires.Empty() && readings.Empty() {
		return Placeholder(PollutantLinesID, s, title)
	}
	lossAxis := field(ColLossSmoothed, Quantitative, "")
	lossAxis.Axis = &Axis{Title: "Superficie quemada (ha)"}
	pollutantAxis := field(ColPollutantSmoothed, Quantitative, "")
	pollutantAxis.Axis = &Axis{Title: kind.Label()}

	return Spec{
		Schema: SchemaURL,
		ID:     PollutantLinesID,
		Title:  s.title(title),
		Width:  s.width(1000),
		Height: s.Height,
		Layer: []Spec{
			{
				Data: inline(fires),
				Mark: &Mark{Type: "line", Color: s.color("fires", "purple")},
				Encoding: &Encoding{
					X:       &Channel{Field: domain.ColDate, Type: Temporal},
					Y:       lossAxis,
					Tooltip: []Channel{tip(domain.ColDate, Temporal, "Fecha"), tip(ColLossSmoothed, Quantitative, "Superficie quemada (ha)")},
				},
			},
			{
				Data: inline(readings),
				Mark: &Mark{Type: "line", Color: s.color("pollutant", "steelblue")},
				Encoding: &Encoding{
					X:       &Channel{Field: domain.ColPollutantDate, Type: Temporal},
					Y:       pollutantAxis,
					Tooltip: []Channel{tip(domain.ColPollutantDate, Temporal, "Fecha"), tip(ColPollutantSmoothed, Quantitative, kind.Label())},
				},
			},
		},
		Resolve: independent("y"),
	}
}

// PollutantBoxes compares daily pollutant means on days with and without a
// fire, drawn over the pollutant's threshold bands. Bands share the y scale
// with the boxes but keep their own color legend.
// Inputs: readings has FECHA, VALOR_MEDIO, Incendio; bands has label, min,
// max, color, already clamped to the readings.
func PollutantBoxes(readings, bands *domain.Table, kind domain.PollutantKind, s Style) Spec {
	title := "Valores diarios de " + kind.Label() + " en días con y sin incendio"
	if readings.Empty() {
		return Placeholder(PollutantBoxesID, s, title)
	}
	width, height := s.width(300), s.height(300)

	bandColor := field(domain.BandLabelColumn, Nominal, "Rangos "+kind.Label())
	bandColor.Scale = &Scale{
		Domain: valuesOf(bands.Column(domain.BandLabelColumn)),
		Range:  valuesOf(bands.Column(domain.BandColorColumn)),
	}
	background := Spec{
		Data: inline(bands),
		Mark: &Mark{Type: "rect", Opacity: ptr(0.25)},
		Encoding: &Encoding{
			Y:     &Channel{Field: domain.BandMinColumn, Type: Quantitative},
			Y2:    &Channel{Field: domain.BandMaxColumn},
			Color: bandColor,
		},
	}

	flag := field(domain.ColFireFlag, Nominal, "")
	flag.HideLegend = true
	flag.Scale = &Scale{
		Domain: []any{domain.FireNo, domain.FireYes},
		Range:  []any{s.color(domain.FireNo, "#1f77b4"), s.color(domain.FireYes, "purple")},
	}
	boxes := Spec{
		Data: inline(readings),
		Mark: &Mark{Type: "boxplot", Size: 50},
		Encoding: &Encoding{
			X:     field(domain.ColFireFlag, Nominal, "¿Hubo incendio?"),
			Y:     field(domain.ColPollutantMean, Quantitative, kind.Label()+" media"),
			Color: flag,
		},
	}

	return Spec{
		Schema:  SchemaURL,
		ID:      PollutantBoxesID,
		Title:   s.title(title),
		Width:   width,
		Height:  height,
		Layer:   []Spec{background, boxes},
		Resolve: &Resolve{Scale: map[string]string{"y": "shared", "color": "independent"}},
	}
}

func valuesOf(vs []domain.Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v.Interface()
	}
	return out
}
