package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func airQualityDays() *Table {
	return NewTable([]string{ColAirQuality, ColFireFlag}, []Row{
		{ColAirQuality: Str("Regular"), ColFireFlag: Str(FireNo)},
		{ColAirQuality: Str("Buena"), ColFireFlag: Str(FireNo)},
		{ColAirQuality: Str("Buena"), ColFireFlag: Str(FireYes)},
		{ColAirQuality: Str("Buena"), ColFireFlag: Str(FireNo)},
		{ColAirQuality: Str("Desfavorable"), ColFireFlag: Str(FireYes)},
	})
}

func TestCountBy(t *testing.T) {
	got := SortBy(CountBy(airQualityDays(), ColFireFlag, ColAirQuality), Asc(ColFireFlag), Asc(ColAirQuality))

	assert.Equal(t, []string{ColFireFlag, ColAirQuality, CountColumn}, got.Columns())
	require.Equal(t, 4, got.Len())
	assert.Equal(t, Strs("No", "No", "Si", "Si"), got.Column(ColFireFlag))
	assert.Equal(t, Strs("Buena", "Regular", "Buena", "Desfavorable"), got.Column(ColAirQuality))
	assert.Equal(t, []Value{Int(2), Int(1), Int(1), Int(1)}, got.Column(CountColumn))
}

func TestCountBy_CountsAddUpToRows(t *testing.T) {
	tbl := airQualityDays()
	var total float64
	for _, v := range CountBy(tbl, ColAirQuality).Column(CountColumn) {
		f, _ := v.AsFloat()
		total += f
	}
	assert.InDelta(t, float64(tbl.Len()), total, 0)
}

func TestAggregateBy(t *testing.T) {
	fires := NewTable([]string{ColRegion, ColAreaLost, ColNDVI}, []Row{
		{ColRegion: Str("Galicia"), ColAreaLost: Num(100), ColNDVI: Num(0.4)},
		{ColRegion: Str("Aragón"), ColAreaLost: Num(5), ColNDVI: Null()},
		{ColRegion: Str("Galicia"), ColAreaLost: Num(300), ColNDVI: Num(0.6)},
		{ColRegion: Str("Aragón"), ColAreaLost: Null(), ColNDVI: Null()},
	})

	got, err := AggregateBy(fires, []string{ColRegion}, []Aggregation{
		Count("n", ColAreaLost),
		Sum("total", ColAreaLost),
		Mean("avg", ColAreaLost),
		Max("peak", ColAreaLost),
		Mean("ndvi", ColNDVI),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{ColRegion, "n", "total", "avg", "peak", "ndvi"}, got.Columns())
	require.Equal(t, 2, got.Len())

	t.Run("groups in first-occurrence order", func(t *testing.T) {
		assert.Equal(t, Strs("Galicia", "Aragón"), got.Column(ColRegion))
	})

	t.Run("reducers", func(t *testing.T) {
		assert.Equal(t, []Value{Int(2), Int(2)}, got.Column("n"))
		assert.Equal(t, []Value{Num(400), Num(5)}, got.Column("total"))
		assert.Equal(t, []Value{Num(200), Num(5)}, got.Column("avg"))
		assert.Equal(t, []Value{Num(300), Num(5)}, got.Column("peak"))
	})

	t.Run("mean of only nulls is null", func(t *testing.T) {
		assert.InDelta(t, 0.5, mustFloat(t, got.Value(0, "ndvi")), 1e-9)
		assert.True(t, got.Value(1, "ndvi").IsNull())
	})
}

func TestAggregateBy_UnknownReducer(t *testing.T) {
	_, err := AggregateBy(airQualityDays(), []string{ColAirQuality}, []Aggregation{{Output: "x", Source: "y", Reducer: "median"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "median")
}

func TestPercentOfGroup(t *testing.T) {
	counts := CountBy(airQualityDays(), ColFireFlag, ColAirQuality)
	got := PercentOfGroup(counts, ColFireFlag, CountColumn)

	sums := map[string]float64{}
	for _, r := range got.Rows() {
		sums[r[ColFireFlag].String()] += mustFloat(t, r[PercentageColumn])
	}
	assert.InDelta(t, 100, sums[FireYes], 1e-9)
	assert.InDelta(t, 100, sums[FireNo], 1e-9)

	for _, r := range got.Rows() {
		if r[ColFireFlag].String() == FireNo && r[ColAirQuality].String() == "Buena" {
			assert.InDelta(t, 200.0/3, mustFloat(t, r[PercentageColumn]), 1e-9)
		}
	}

	t.Run("zero group total gives null", func(t *testing.T) {
		zero := NewTable([]string{"g", "c"}, []Row{{"g": Str("a"), "c": Num(0)}})
		assert.True(t, PercentOfGroup(zero, "g", "c").Value(0, PercentageColumn).IsNull())
	})
}

func TestOrderedCategoricalSort(t *testing.T) {
	counts := CountBy(airQualityDays(), ColFireFlag, ColAirQuality)

	got, err := OrderedCategoricalSort(counts, ColAirQuality, AirQualityLevels, ColFireFlag)
	require.NoError(t, err)

	rankColumn := ColAirQuality + RankSuffix
	assert.True(t, got.HasColumn(rankColumn))
	assert.Equal(t, Strs("No", "No", "Si", "Si"), got.Column(ColFireFlag))
	assert.Equal(t, Strs("Buena", "Regular", "Buena", "Desfavorable"), got.Column(ColAirQuality))
	assert.Equal(t, []Value{Int(0), Int(2), Int(0), Int(3)}, got.Column(rankColumn))

	t.Run("idempotent", func(t *testing.T) {
		again, err := OrderedCategoricalSort(got, ColAirQuality, AirQualityLevels, ColFireFlag)
		require.NoError(t, err)
		assert.Equal(t, got.Column(ColAirQuality), again.Column(ColAirQuality))
		assert.Equal(t, got.Column(ColFireFlag), again.Column(ColFireFlag))
	})

	t.Run("unknown category fails", func(t *testing.T) {
		bad := NewTable([]string{ColAirQuality}, []Row{{ColAirQuality: Str("Buena")}, {ColAirQuality: Str("Pésima")}})
		_, err := OrderedCategoricalSort(bad, ColAirQuality, AirQualityLevels)
		var catErr *UnknownCategoryError
		require.ErrorAs(t, err, &catErr)
		assert.Equal(t, "Pésima", catErr.Value)
		assert.Equal(t, ColAirQuality, catErr.Column)
	})
}

func TestReindexToCanonicalKeys(t *testing.T) {
	monthly := NewTable([]string{ColMonth, "n"}, []Row{
		{ColMonth: Str("agosto"), "n": Int(4)},
		{ColMonth: Str("marzo"), "n": Int(1)},
		{ColMonth: Str("agosto"), "n": Int(9)},
		{ColMonth: Str("smarch"), "n": Int(7)},
	})

	got := ReindexToCanonicalKeys(monthly, ColMonth, Months.Keys(), Int(0))

	require.Equal(t, Months.Len(), got.Len())
	assert.Equal(t, Months.Keys(), got.Column(ColMonth))

	n := got.Column("n")
	assert.Equal(t, Int(1), n[2], "marzo")
	assert.Equal(t, Int(4), n[7], "first agosto row wins")
	assert.Equal(t, Int(0), n[0], "enero filled")
	assert.Equal(t, Int(0), n[11], "diciembre filled")

	t.Run("missing key column is added", func(t *testing.T) {
		empty := NewTable([]string{"n"}, nil)
		got := ReindexToCanonicalKeys(empty, ColMonth, Months.Keys(), Null())
		assert.Equal(t, []string{ColMonth, "n"}, got.Columns())
		assert.True(t, got.Value(5, "n").IsNull())
	})
}

func mustFloat(t *testing.T, v Value) float64 {
	t.Helper()
	f, ok := v.AsFloat()
	require.True(t, ok, "cell %v is not a number", v)
	return f
}
