package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeftLookup(t *testing.T) {
	readings := NewTable([]string{ColPollutantDate, ColPollutantMean}, []Row{
		{ColPollutantDate: Date(day(2003, time.July, 1)), ColPollutantMean: Num(80)},
		{ColPollutantDate: Date(day(2003, time.July, 2)), ColPollutantMean: Num(95)},
		{ColPollutantDate: Null(), ColPollutantMean: Num(60)},
	})
	fires := NewTable([]string{ColDate, ColAreaLost}, []Row{
		{ColDate: Date(day(2003, time.July, 2).Add(14 * time.Hour)), ColAreaLost: Num(12)},
		{ColDate: Date(day(2003, time.July, 2)), ColAreaLost: Num(99)},
		{ColDate: Null(), ColAreaLost: Num(7)},
	})

	got := LeftLookup(readings, fires, ColPollutantDate, ColDate, ColAreaLost)

	t.Run("keeps every primary row in order", func(t *testing.T) {
		require.Equal(t, readings.Len(), got.Len())
		assert.Equal(t, readings.Column(ColPollutantMean), got.Column(ColPollutantMean))
		assert.Equal(t, []string{ColPollutantDate, ColPollutantMean, ColAreaLost}, got.Columns())
	})

	t.Run("unmatched rows get null", func(t *testing.T) {
		assert.True(t, got.Value(0, ColAreaLost).IsNull())
	})

	t.Run("dates match by day and first match wins", func(t *testing.T) {
		assert.Equal(t, Num(12), got.Value(1, ColAreaLost))
	})

	t.Run("null keys never match", func(t *testing.T) {
		assert.True(t, got.Value(2, ColAreaLost).IsNull())
	})
}

func TestFireFlag(t *testing.T) {
	tbl := NewTable([]string{ColAreaLost}, []Row{
		{ColAreaLost: Num(3.5)},
		{ColAreaLost: Num(0)},
		{ColAreaLost: Null()},
		{ColAreaLost: Str("n/a")},
	})
	got := FireFlag(tbl, ColAreaLost)
	assert.Equal(t, Strs(FireYes, FireNo, FireNo, FireNo), got.Column(ColFireFlag))
}

func TestIsSeriousFire(t *testing.T) {
	assert.True(t, IsSeriousFire(Row{ColAreaLost: Num(500.5)}))
	assert.False(t, IsSeriousFire(Row{ColAreaLost: Num(500)}))
	assert.False(t, IsSeriousFire(Row{}))
}

func TestFiveYearBucket(t *testing.T) {
	assert.Equal(t, "1970-1974", FiveYearBucket(1970))
	assert.Equal(t, "1985-1989", FiveYearBucket(1987))
	assert.Equal(t, "2010-2014", FiveYearBucket(2014))
}

func TestParsePollutantKind(t *testing.T) {
	cases := map[string]PollutantKind{
		"O3":     O3,
		"so2":    SO2,
		" NO2 ":  NO2,
		"PM 2,5": PM25,
		"pm2.5":  PM25,
		"PM_10":  PM10,
	}
	for in, want := range cases {
		got, err := ParsePollutantKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePollutantKind("CO")
	require.ErrorIs(t, err, ErrUnknownPollutant)
}

// Pollutant readings 2000-2005 filtered to 2001-2003 and joined to fire days:
// only days with recorded loss are flagged Si.
func TestPollutantFireDays_EndToEnd(t *testing.T) {
	var readings []Row
	for y := 2000; y <= 2005; y++ {
		readings = append(readings, Row{
			ColPollutantDate: Date(day(y, time.August, 15)),
			ColPollutantYear: Int(y),
			ColPollutantMean: Num(float64(y - 1990)),
		})
	}
	pollutant := NewTable([]string{ColPollutantDate, ColPollutantYear, ColPollutantMean}, readings)

	fires := NewTable([]string{ColDate, ColAreaLost}, []Row{
		{ColDate: Date(day(2002, time.August, 15)), ColAreaLost: Num(40)},
		{ColDate: Date(day(2004, time.August, 15)), ColAreaLost: Num(70)},
	})

	filtered := FilterByYearRange(pollutant, ColPollutantYear, 2001, 2003)
	joined := FireFlag(LeftLookup(filtered, fires, ColPollutantDate, ColDate, ColAreaLost), ColAreaLost)

	require.Equal(t, 3, joined.Len())
	assert.Equal(t, []int{2001, 2002, 2003}, yearsOf(t, joined, ColPollutantYear))
	assert.Equal(t, Strs(FireNo, FireYes, FireNo), joined.Column(ColFireFlag))
}
