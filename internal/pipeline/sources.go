package pipeline

// Source keys the charts read. They must be registered in the page configuration.
const (
	SourceFiresSpain      = "fires_spain"
	SourceFiresNDVI       = "fires_ndvi"
	SourceNDVIMonthly     = "ndvi_monthly"
	SourceNDVIPrevious    = "ndvi_previous"
	SourceFiresAndalusia  = "fires_andalusia"
	SourceAirQualityDaily = "air_quality_daily"
	SourcePollutantBands  = "pollutant_bands"
)

// fiveYearWindow bounds the years the five-year chart ever covers.
const (
	fiveYearWindowFrom = 1970
	fiveYearWindowTo   = 2014
)
