package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/wildfire-dashboard/internal/chart"
	"github.com/couchcryptid/wildfire-dashboard/internal/config"
	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

// renderContext is everything one chart build sees.
type renderContext struct {
	ctx    context.Context
	tables TableLoader
	pages  *config.Pages
	sel    domain.Selection
	style  chart.Style
	opts   Options
}

func (rc renderContext) load(key string) (*domain.Table, error) {
	return rc.tables.Load(rc.ctx, key)
}

// inRange loads a source and keeps the selected years.
func (rc renderContext) inRange(key, yearColumn string) (*domain.Table, error) {
	t, err := rc.load(key)
	if err != nil {
		return nil, err
	}
	return domain.FilterByYearRange(t, yearColumn, rc.sel.From, rc.sel.To), nil
}

func (rc renderContext) pollutant() (*domain.Table, error) {
	key, ok := rc.pages.PollutantSource(rc.sel.Pollutant)
	if !ok {
		return nil, fmt.Errorf("pollutant %q: %w", rc.sel.Pollutant, domain.ErrUnknownPollutant)
	}
	return rc.load(key)
}

type chartBuilder struct {
	sources []string
	build   func(rc renderContext) (chart.Spec, error)
}

// builders maps chart ids to their data preparation and spec builder.
var builders = map[string]chartBuilder{
	chart.FiresByRegionID:    {sources: []string{SourceFiresSpain}, build: firesByRegion},
	chart.FiresByFiveYearsID: {sources: []string{SourceFiresSpain}, build: firesByFiveYears},
	chart.FiresByYearID:      {sources: []string{SourceFiresSpain}, build: firesByYear},
	chart.NDVIBubblesID:      {sources: []string{SourceFiresNDVI}, build: ndviBubbles},
	chart.SeriousFiresNDVIID: {sources: []string{SourceFiresSpain, SourceNDVIMonthly}, build: seriousFiresNDVI},
	chart.PreviousNDVIID:     {sources: []string{SourceNDVIPrevious}, build: previousNDVI},
	chart.AirQualityPiesID:   {sources: []string{SourceAirQualityDaily}, build: airQualityPies},
	chart.PollutantLinesID:   {sources: []string{SourceFiresAndalusia}, build: pollutantLines},
	chart.PollutantBoxesID:   {sources: []string{SourceFiresAndalusia, SourcePollutantBands}, build: pollutantBoxes},
}

func firesByRegion(rc renderContext) (chart.Spec, error) {
	fires, err := rc.load(SourceFiresSpain)
	if err != nil {
		return chart.Spec{}, err
	}
	perYear := domain.CountBy(fires, domain.ColRegion, domain.ColYear)
	perYear = domain.FilterByYearRange(perYear, domain.ColYear, rc.sel.From, rc.sel.To)
	totals, err := domain.AggregateBy(perYear, []string{domain.ColRegion}, []domain.Aggregation{
		domain.Sum(chart.ColTotal, domain.CountColumn),
	})
	if err != nil {
		return chart.Spec{}, err
	}
	return chart.FiresByRegion(domain.SortBy(totals, domain.Desc(chart.ColTotal)), rc.style), nil
}

func firesByFiveYears(rc renderContext) (chart.Spec, error) {
	fires, err := rc.load(SourceFiresSpain)
	if err != nil {
		return chart.Spec{}, err
	}
	window := domain.FilterByYearRange(fires, domain.ColYear, fiveYearWindowFrom, fiveYearWindowTo)
	perYear, err := domain.AggregateBy(window, []string{domain.ColYear}, []domain.Aggregation{
		domain.Sum(chart.ColTotal, domain.ColAreaLost),
		domain.Count(chart.ColCount, domain.ColAreaLost),
	})
	if err != nil {
		return chart.Spec{}, err
	}
	perYear = domain.WithColumn(perYear, chart.ColFiveYearBucket, func(r domain.Row) domain.Value {
		y, ok := r[domain.ColYear].Year()
		if !ok {
			return domain.Null()
		}
		return domain.Str(domain.FiveYearBucket(y))
	})
	perYear = domain.FilterByYearRange(perYear, domain.ColYear, rc.sel.From, rc.sel.To)

	buckets, err := domain.AggregateBy(perYear, []string{chart.ColFiveYearBucket}, []domain.Aggregation{
		domain.Sum(chart.ColTotal, chart.ColTotal),
		domain.Sum(chart.ColCount, chart.ColCount),
	})
	if err != nil {
		return chart.Spec{}, err
	}
	return chart.FiresByFiveYears(domain.SortBy(buckets, domain.Asc(chart.ColFiveYearBucket)), rc.style), nil
}

func firesByYear(rc renderContext) (chart.Spec, error) {
	fires, err := rc.inRange(SourceFiresSpain, domain.ColYear)
	if err != nil {
		return chart.Spec{}, err
	}
	perYear, err := domain.AggregateBy(fires, []string{domain.ColYear}, []domain.Aggregation{
		domain.Sum(chart.ColTotal, domain.ColAreaLost),
		domain.Count(chart.ColCount, domain.ColAreaLost),
	})
	if err != nil {
		return chart.Spec{}, err
	}
	return chart.FiresByYear(domain.SortBy(perYear, domain.Asc(domain.ColYear)), rc.style), nil
}

func ndviBubbles(rc renderContext) (chart.Spec, error) {
	merged, err := rc.inRange(SourceFiresNDVI, domain.ColYear)
	if err != nil {
		return chart.Spec{}, err
	}
	regions, err := domain.AggregateBy(merged, []string{domain.ColRegionMerged}, []domain.Aggregation{
		domain.Sum(chart.ColTotalFires, domain.ColMergedCount),
		domain.Sum(chart.ColTotalHectares, domain.ColMergedTotal),
		domain.Mean(chart.ColNDVIAvg, domain.ColNDVIMean),
	})
	if err != nil {
		return chart.Spec{}, err
	}
	return chart.NDVIBubbles(regions, rc.style), nil
}

// seriousFiresNDVI filters fires by the selected years; the monthly NDVI
// series is a climatology and is always shown whole.
func seriousFiresNDVI(rc renderContext) (chart.Spec, error) {
	fires, err := rc.inRange(SourceFiresSpain, domain.ColYear)
	if err != nil {
		return chart.Spec{}, err
	}
	ndvi, err := rc.load(SourceNDVIMonthly)
	if err != nil {
		return chart.Spec{}, err
	}

	serious := domain.FilterRows(fires, domain.IsSeriousFire)
	monthly := domain.ReindexToCanonicalKeys(
		domain.CountBy(serious, domain.ColMonth), domain.ColMonth, domain.Months.Keys(), domain.Int(0))
	if fires.Empty() {
		monthly = monthly.Head(0)
	}
	monthly, err = domain.OrderedCategoricalSort(monthly, domain.ColMonth, domain.Months)
	if err != nil {
		return chart.Spec{}, err
	}
	ndvi, err = domain.OrderedCategoricalSort(ndvi, domain.ColMonth, domain.Months)
	if err != nil {
		return chart.Spec{}, err
	}
	return chart.SeriousFiresNDVI(monthly, ndvi, rc.style), nil
}

func previousNDVI(rc renderContext) (chart.Spec, error) {
	prev, err := rc.inRange(SourceNDVIPrevious, domain.ColYear)
	if err != nil {
		return chart.Spec{}, err
	}
	groups, err := domain.AggregateBy(prev,
		[]string{domain.ColFortnight, domain.ColYear, domain.ColProvince},
		[]domain.Aggregation{
			domain.Mean(chart.ColNDVIPrevMean, domain.ColNDVIPrevious),
			domain.Sum(chart.ColLossSum, domain.ColAreaLost),
			domain.Mean(chart.ColLossMean, domain.ColAreaLost),
			domain.Max(chart.ColLossMax, domain.ColAreaLost),
			domain.Count(chart.ColFireCount, domain.ColAreaLost),
		})
	if err != nil {
		return chart.Spec{}, err
	}
	return chart.PreviousNDVI(groups, rc.style), nil
}

func airQualityPies(rc renderContext) (chart.Spec, error) {
	days, err := rc.inRange(SourceAirQualityDaily, domain.ColYear)
	if err != nil {
		return chart.Spec{}, err
	}
	counts := domain.CountBy(days, domain.ColFireFlag, domain.ColAirQuality)
	shares := domain.PercentOfGroup(counts, domain.ColFireFlag, domain.CountColumn)
	sorted, err := domain.OrderedCategoricalSort(shares, domain.ColAirQuality, domain.AirQualityLevels, domain.ColFireFlag)
	if err != nil {
		return chart.Spec{}, err
	}
	return chart.AirQualityPies(sorted, domain.AirQualityLevels, rc.style), nil
}

func pollutantLines(rc renderContext) (chart.Spec, error) {
	fires, err := rc.inRange(SourceFiresAndalusia, domain.ColYear)
	if err != nil {
		return chart.Spec{}, err
	}
	readings, err := rc.pollutant()
	if err != nil {
		return chart.Spec{}, err
	}
	readings = domain.FilterByYearRange(readings, domain.ColPollutantYear, rc.sel.From, rc.sel.To)

	fires, err = domain.RollingMean(domain.SortBy(fires, domain.Asc(domain.ColDate)),
		domain.ColAreaLost, chart.ColLossSmoothed, rc.opts.RollingWindow, rc.opts.RollingMinPeriods)
	if err != nil {
		return chart.Spec{}, err
	}
	readings, err = domain.RollingMean(domain.SortBy(readings, domain.Asc(domain.ColPollutantDate)),
		domain.ColPollutantMean, chart.ColPollutantSmoothed, rc.opts.RollingWindow, rc.opts.RollingMinPeriods)
	if err != nil {
		return chart.Spec{}, err
	}
	return chart.PollutantLines(fires, readings, rc.sel.Pollutant, rc.style), nil
}

// pollutantBoxes joins daily pollutant means to daily fire losses and flags
// each day Si/No. Bands are clamped to the highest daily mean in range.
func pollutantBoxes(rc renderContext) (chart.Spec, error) {
	fires, err := rc.inRange(SourceFiresAndalusia, domain.ColYear)
	if err != nil {
		return chart.Spec{}, err
	}
	readings, err := rc.pollutant()
	if err != nil {
		return chart.Spec{}, err
	}
	allBands, err := rc.load(SourcePollutantBands)
	if err != nil {
		return chart.Spec{}, err
	}

	dailyLoss, err := domain.AggregateBy(fires, []string{domain.ColDate}, []domain.Aggregation{
		domain.Sum(domain.ColAreaLost, domain.ColAreaLost),
	})
	if err != nil {
		return chart.Spec{}, err
	}
	daily, err := domain.AggregateBy(readings, []string{domain.ColPollutantDate}, []domain.Aggregation{
		domain.Mean(domain.ColPollutantMean, domain.ColPollutantMean),
	})
	if err != nil {
		return chart.Spec{}, err
	}
	daily = domain.FilterByYearRange(daily, domain.ColPollutantDate, rc.sel.From, rc.sel.To)

	peak, ok := daily.Max(domain.ColPollutantMean)
	if !ok {
		return chart.PollutantBoxes(daily.Head(0), allBands.Head(0), rc.sel.Pollutant, rc.style), nil
	}
	bands, err := domain.ClampBands(domain.BandsFor(allBands, rc.sel.Pollutant), peak, rc.opts.BandRoundTo)
	if err != nil {
		return chart.Spec{}, err
	}

	joined := domain.LeftLookup(daily, dailyLoss, domain.ColPollutantDate, domain.ColDate, domain.ColAreaLost)
	return chart.PollutantBoxes(domain.FireFlag(joined, domain.ColAreaLost), bands, rc.sel.Pollutant, rc.style), nil
}
