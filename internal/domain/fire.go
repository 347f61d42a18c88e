package domain

import "fmt"

// Column names shared by the fire, pollutant and air-quality tables.
const (
	ColRegion        = "comunidad"
	ColRegionMerged  = "comunidad_y"
	ColProvince      = "provincia"
	ColYear          = "anio"
	ColDate          = "fecha"
	ColAreaLost      = "perdidassuperficiales"
	ColMonth         = "mesdeteccion"
	ColFortnight     = "fortnight"
	ColNDVI          = "NDVI"
	ColNDVIMean      = "ndvi_mean"
	ColNDVIPrevious  = "NDVI_previo"
	ColMergedCount   = "count"
	ColMergedTotal   = "total"
	ColAirQuality    = "label"
	ColFireFlag      = "Incendio"
	ColPollutantDate = "FECHA"
	ColPollutantYear = "AÑO"
	ColPollutantMean = "VALOR_MEDIO"
)

// Fire flag labels, as shown on the dashboard.
const (
	FireYes = "Si"
	FireNo  = "No"
)

// SeriousFireHectares is the burned area above which a fire counts as serious.
const SeriousFireHectares = 500.0

// IsSeriousFire reports whether a fire row burned more than SeriousFireHectares.
func IsSeriousFire(r Row) bool {
	return GreaterThan(SeriousFireHectares)(r[ColAreaLost])
}

// FiveYearBucket labels the five-year span containing year, e.g. 1987 -> "1985-1989".
func FiveYearBucket(year int) string {
	start := year - year%5
	return fmt.Sprintf("%d-%d", start, start+4)
}

// FireFlag derives the Si/No "was there a fire that day" column from a daily
// loss column. Days with no matching loss (null) count as no fire.
func FireFlag(t *Table, lossColumn string) *Table {
	return DeriveBooleanFlag(t, lossColumn, GreaterThan(0), ColFireFlag, FireYes, FireNo)
}
