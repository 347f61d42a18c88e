package chart_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-dashboard/internal/chart"
	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

func roundTrip(t *testing.T, v any) map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func regionTotals() *domain.Table {
	return domain.NewTable([]string{domain.ColRegion, chart.ColTotal}, []domain.Row{
		{domain.ColRegion: domain.Str("Galicia"), chart.ColTotal: domain.Int(120)},
		{domain.ColRegion: domain.Str("Asturias"), chart.ColTotal: domain.Int(80)},
	})
}

func TestChannel_HiddenGuidesSerializeAsNull(t *testing.T) {
	c := chart.Channel{Field: "x", Type: chart.Quantitative, HideAxis: true, HideLegend: true}
	got := roundTrip(t, c)

	axis, ok := got["axis"]
	assert.True(t, ok)
	assert.Nil(t, axis)
	legend, ok := got["legend"]
	assert.True(t, ok)
	assert.Nil(t, legend)
	assert.Equal(t, "x", got["field"])
}

func TestChannel_VisibleGuidesAreOmitted(t *testing.T) {
	got := roundTrip(t, chart.Channel{Field: "x"})
	assert.NotContains(t, got, "axis")
	assert.NotContains(t, got, "legend")
}

func TestFiresByRegion(t *testing.T) {
	spec := chart.FiresByRegion(regionTotals(), chart.Style{})

	assert.Equal(t, chart.FiresByRegionID, spec.ID)
	assert.Equal(t, 800, spec.Width)
	assert.Equal(t, 500, spec.Height)
	require.NotNil(t, spec.Encoding)
	assert.Equal(t, "-y", spec.Encoding.X.Sort)
	require.NotNil(t, spec.Encoding.X.Axis.LabelAngle)
	assert.InDelta(t, -30, *spec.Encoding.X.Axis.LabelAngle, 0)
	assert.Len(t, spec.Data.Values, 2)
	assert.Equal(t, "Galicia", spec.Data.Values[0][domain.ColRegion])
}

func TestStyleOverridesDefaults(t *testing.T) {
	style := chart.Style{Title: "Custom", Width: 400, Colors: map[string]string{"count": "#000000"}}
	spec := chart.FiresByFiveYears(domain.NewTable(
		[]string{chart.ColFiveYearBucket, chart.ColCount, chart.ColTotal},
		[]domain.Row{{chart.ColFiveYearBucket: domain.Str("1990-1994"), chart.ColCount: domain.Int(3), chart.ColTotal: domain.Num(12.5)}},
	), style)

	assert.Equal(t, "Custom", spec.Title)
	assert.Equal(t, 400, spec.Width)
	assert.Equal(t, 500, spec.Height)
	require.Len(t, spec.Layer, 2)
	assert.Equal(t, "#000000", spec.Layer[0].Mark.Color)
	assert.Equal(t, "purple", spec.Layer[1].Mark.Color)
	assert.Equal(t, "independent", spec.Resolve.Scale["y"])
}

func TestEmptyInputGivesPlaceholder(t *testing.T) {
	empty := domain.NewTable([]string{domain.ColRegion, chart.ColTotal}, nil)

	specs := []chart.Spec{
		chart.FiresByRegion(empty, chart.Style{}),
		chart.FiresByFiveYears(empty, chart.Style{}),
		chart.FiresByYear(empty, chart.Style{}),
		chart.NDVIBubbles(empty, chart.Style{}),
		chart.SeriousFiresNDVI(empty, empty, chart.Style{}),
		chart.PreviousNDVI(empty, chart.Style{}),
		chart.AirQualityPies(empty, domain.AirQualityLevels, chart.Style{}),
		chart.PollutantLines(empty, empty, domain.O3, chart.Style{}),
		chart.PollutantBoxes(empty, empty, domain.O3, chart.Style{}),
	}
	for _, spec := range specs {
		assert.True(t, spec.IsPlaceholder(), spec.ID)
		assert.Equal(t, chart.NoDataMessage, spec.Placeholder, spec.ID)
		assert.NotEmpty(t, spec.Title, spec.ID)
		require.NotNil(t, spec.Data, spec.ID)
		assert.Empty(t, spec.Data.Values, spec.ID)
		assert.Nil(t, spec.Mark, spec.ID)
	}
}

func TestFiresByYear_HoverSelection(t *testing.T) {
	tbl := domain.NewTable([]string{domain.ColYear, chart.ColCount, chart.ColTotal}, []domain.Row{
		{domain.ColYear: domain.Int(2001), chart.ColCount: domain.Int(4), chart.ColTotal: domain.Num(50)},
	})
	spec := chart.FiresByYear(tbl, chart.Style{})

	require.Len(t, spec.VConcat, 2)
	assert.Equal(t, map[string]string{"x": "shared", "y": "independent"}, spec.Resolve.Scale)

	top := spec.VConcat[0]
	require.Len(t, top.Layer, 4)
	selector := top.Layer[1]
	require.Len(t, selector.Params, 1)
	assert.Equal(t, chart.HoverParam, selector.Params[0].Name)
	assert.Equal(t, "pointermove", selector.Params[0].Select.On)
	assert.Equal(t, []string{domain.ColYear}, selector.Params[0].Select.Fields)
	assert.Empty(t, spec.VConcat[1].Layer[1].Params, "param is declared once")

	tooltipTitles := make([]string, 0, 3)
	for _, c := range selector.Encoding.Tooltip {
		tooltipTitles = append(tooltipTitles, c.Title)
	}
	assert.Equal(t, []string{"Año", "Número de incendios", "Hectáreas quemadas"}, tooltipTitles)

	points := top.Layer[2]
	assert.True(t, points.Encoding.Y.HideAxis)
	require.NotNil(t, points.Encoding.Opacity.Condition)
	assert.Equal(t, chart.HoverParam, points.Encoding.Opacity.Condition.Param)
	require.NotNil(t, points.Encoding.Opacity.Condition.Empty)
	assert.False(t, *points.Encoding.Opacity.Condition.Empty)

	rule := roundTrip(t, top.Layer[3])
	enc := rule["encoding"].(map[string]any)
	opacity := enc["opacity"].(map[string]any)
	assert.InDelta(t, 0, opacity["value"], 0, "rule is hidden until hover")
	assert.InDelta(t, 0.4, opacity["condition"].(map[string]any)["value"], 1e-9)
}

func TestNDVIBubbles_PaddedDomains(t *testing.T) {
	tbl := domain.NewTable(
		[]string{domain.ColRegionMerged, chart.ColTotalFires, chart.ColTotalHectares, chart.ColNDVIAvg},
		[]domain.Row{
			{domain.ColRegionMerged: domain.Str("Galicia"), chart.ColTotalFires: domain.Int(100), chart.ColTotalHectares: domain.Num(900), chart.ColNDVIAvg: domain.Num(0.5)},
			{domain.ColRegionMerged: domain.Str("Murcia"), chart.ColTotalFires: domain.Int(20), chart.ColTotalHectares: domain.Num(40), chart.ColNDVIAvg: domain.Num(0.2)},
		})
	spec := chart.NDVIBubbles(tbl, chart.Style{})

	require.NotNil(t, spec.Encoding.X.Scale)
	assert.Equal(t, []any{0.0, 0.55}, spec.Encoding.X.Scale.Domain)
	assert.Equal(t, []any{0.0, 110.0}, spec.Encoding.Y.Scale.Domain)
	assert.Equal(t, []any{300, 5000}, spec.Encoding.Size.Scale.Range)
	assert.Equal(t, "category20", spec.Encoding.Color.Scale.Scheme)
	assert.Equal(t, 600, spec.Height)
}

func TestNDVIBubbles_NegativeNDVIStaysOnAxis(t *testing.T) {
	tbl := domain.NewTable(
		[]string{domain.ColRegionMerged, chart.ColTotalFires, chart.ColTotalHectares, chart.ColNDVIAvg},
		[]domain.Row{
			{domain.ColRegionMerged: domain.Str("Canarias"), chart.ColTotalFires: domain.Int(3), chart.ColTotalHectares: domain.Num(10), chart.ColNDVIAvg: domain.Num(-0.1)},
			{domain.ColRegionMerged: domain.Str("Galicia"), chart.ColTotalFires: domain.Int(30), chart.ColTotalHectares: domain.Num(90), chart.ColNDVIAvg: domain.Num(0.5)},
		})
	spec := chart.NDVIBubbles(tbl, chart.Style{})

	require.NotNil(t, spec.Encoding.X.Scale)
	assert.Equal(t, []any{-0.11, 0.55}, spec.Encoding.X.Scale.Domain)
	assert.Equal(t, []any{0.0, 33.0}, spec.Encoding.Y.Scale.Domain)
}

func TestSeriousFiresNDVI_MonthOrder(t *testing.T) {
	serious := domain.NewTable([]string{domain.ColMonth, chart.ColCount}, []domain.Row{
		{domain.ColMonth: domain.Str("agosto"), chart.ColCount: domain.Int(2)},
	})
	ndvi := domain.NewTable([]string{domain.ColMonth, domain.ColNDVI}, nil)
	spec := chart.SeriousFiresNDVI(serious, ndvi, chart.Style{})

	require.False(t, spec.IsPlaceholder())
	require.Len(t, spec.Layer, 2)
	assert.Equal(t, domain.Months.Values(), spec.Layer[0].Encoding.X.Sort)
	assert.Equal(t, "orange", spec.Layer[0].Mark.Color)
	assert.Equal(t, "green", spec.Layer[1].Mark.Color)
	assert.Empty(t, spec.Layer[1].Data.Values)
}

func TestAirQualityPies(t *testing.T) {
	tbl := domain.NewTable(
		[]string{domain.ColFireFlag, domain.ColAirQuality, domain.CountColumn, domain.PercentageColumn},
		[]domain.Row{{
			domain.ColFireFlag:      domain.Str(domain.FireYes),
			domain.ColAirQuality:    domain.Str("Buena"),
			domain.CountColumn:      domain.Int(3),
			domain.PercentageColumn: domain.Num(100),
		}})
	style := chart.Style{Colors: map[string]string{"Regular": "#FFFF00"}}
	spec := chart.AirQualityPies(tbl, domain.AirQualityLevels, style)

	assert.InDelta(t, 130, spec.Mark.InnerRadius, 0)
	assert.Equal(t, "¿Hubo incendio?", spec.Encoding.Facet.Title)

	want := []any{"#38A2CE", "#32B15E", "#FFFF00", "#F28C28", "#D53441", "#A52DA4"}
	if diff := cmp.Diff(want, spec.Encoding.Color.Scale.Range); diff != "" {
		t.Errorf("palette mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, spec.Encoding.Color.Scale.Domain, 6)
	assert.Equal(t, domain.ColAirQuality+domain.RankSuffix, spec.Encoding.Order.Field)
}

func TestPollutantLines(t *testing.T) {
	day := time.Date(2010, time.May, 3, 0, 0, 0, 0, time.UTC)
	fires := domain.NewTable([]string{domain.ColDate, chart.ColLossSmoothed}, []domain.Row{
		{domain.ColDate: domain.Date(day), chart.ColLossSmoothed: domain.Num(3)},
	})
	readings := domain.NewTable([]string{domain.ColPollutantDate, chart.ColPollutantSmoothed}, nil)

	spec := chart.PollutantLines(fires, readings, domain.PM25, chart.Style{})
	assert.Equal(t, "Evolución de incendios vs PM 2,5", spec.Title)
	assert.Equal(t, 1000, spec.Width)
	require.Len(t, spec.Layer, 2)
	assert.Equal(t, chart.Temporal, spec.Layer[0].Encoding.X.Type)
	assert.Equal(t, "2010-05-03", spec.Layer[0].Data.Values[0][domain.ColDate])
	assert.Equal(t, "PM 2,5", spec.Layer[1].Encoding.Y.Axis.Title)
}

func TestPollutantBoxes(t *testing.T) {
	readings := domain.NewTable([]string{domain.ColPollutantMean, domain.ColFireFlag}, []domain.Row{
		{domain.ColPollutantMean: domain.Num(42), domain.ColFireFlag: domain.Str(domain.FireYes)},
	})
	bands := domain.NewTable(
		[]string{domain.BandLabelColumn, domain.BandMinColumn, domain.BandMaxColumn, domain.BandColorColumn},
		[]domain.Row{
			{domain.BandLabelColumn: domain.Str("Buena"), domain.BandMinColumn: domain.Num(0), domain.BandMaxColumn: domain.Num(40), domain.BandColorColumn: domain.Str("#38A2CE")},
			{domain.BandLabelColumn: domain.Str("Regular"), domain.BandMinColumn: domain.Num(40), domain.BandMaxColumn: domain.Num(60), domain.BandColorColumn: domain.Str("#F1E549")},
		})

	spec := chart.PollutantBoxes(readings, bands, domain.NO2, chart.Style{})

	require.Len(t, spec.Layer, 2)
	background, boxes := spec.Layer[0], spec.Layer[1]
	assert.Equal(t, "rect", background.Mark.Type)
	assert.Equal(t, []any{"Buena", "Regular"}, background.Encoding.Color.Scale.Domain)
	assert.Equal(t, []any{"#38A2CE", "#F1E549"}, background.Encoding.Color.Scale.Range)
	assert.Equal(t, "Rangos NO2", background.Encoding.Color.Title)

	assert.Equal(t, "boxplot", boxes.Mark.Type)
	assert.True(t, boxes.Encoding.Color.HideLegend)
	assert.Equal(t, []any{domain.FireNo, domain.FireYes}, boxes.Encoding.Color.Scale.Domain)
	assert.Equal(t, "NO2 media", boxes.Encoding.Y.Title)
	assert.Equal(t, map[string]string{"y": "shared", "color": "independent"}, spec.Resolve.Scale)
}
