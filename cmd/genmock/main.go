// Command genmock writes a deterministic set of sample source CSV files for
// the embedded page layout, so the dashboard can be run and demoed without
// the real datasets. The generated tables are validated by loading them
// through the same CSV store the server uses.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -seed 7
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/wildfire-dashboard/internal/adapter/csvstore"
	"github.com/couchcryptid/wildfire-dashboard/internal/chart"
	"github.com/couchcryptid/wildfire-dashboard/internal/config"
	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-dashboard/internal/observability"
)

var regions = []string{
	"Andalucía", "Aragón", "Asturias", "Castilla y León", "Castilla-La Mancha",
	"Cataluña", "Comunidad Valenciana", "Extremadura", "Galicia", "Madrid",
}

var provinces = []string{"Huelva", "Sevilla", "Lugo", "Ourense", "Cáceres", "Valencia", "Asturias", "León"}

// icaBands are the air-quality index thresholds per pollutant label, in µg/m³.
var icaBands = map[string][]float64{
	"O3":     {0, 50, 100, 130, 240, 380, 800},
	"NO2":    {0, 40, 90, 120, 230, 340, 1000},
	"SO2":    {0, 100, 200, 350, 500, 750, 1250},
	"PM 10":  {0, 20, 40, 50, 100, 150, 1200},
	"PM 2,5": {0, 10, 20, 25, 50, 75, 800},
}

// pollutantLevel is a typical daily mean and spread per pollutant source.
var pollutantLevel = map[string][2]float64{
	"pollutant_o3":   {65, 20},
	"pollutant_no2":  {25, 10},
	"pollutant_so2":  {6, 3},
	"pollutant_pm10": {28, 12},
	"pollutant_pm25": {13, 6},
}

const (
	firstYear = 1968
	lastYear  = 2015
	// Andalusia daily data covers a shorter span.
	firstDailyYear = 2003
	lastDailyYear  = 2015
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the generated CSV files")
	seed := flag.Uint64("seed", 1, "random seed; the same seed gives the same files")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	pages, err := config.LoadPages("")
	if err != nil {
		return err
	}
	g := &generator{rng: rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))}

	writers := map[string]func(*csv.Writer) error{
		"fires_spain":       g.firesSpain,
		"fires_ndvi":        g.firesNDVI,
		"ndvi_monthly":      g.ndviMonthly,
		"ndvi_previous":     g.ndviPrevious,
		"fires_andalusia":   g.firesAndalusia,
		"air_quality_daily": g.airQualityDaily,
		"pollutant_bands":   writeBands,
	}
	for key := range pollutantLevel {
		writers[key] = g.pollutant(key)
	}

	for _, key := range pages.SourceKeys() {
		write, ok := writers[key]
		if !ok {
			return fmt.Errorf("no generator for source %q", key)
		}
		path := filepath.Join(*out, pages.Sources[key].File)
		if err := writeCSV(path, write); err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
	}

	// Load everything back to make sure the files parse.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := csvstore.NewFileStore(*out, pages.Sources, logger, observability.NewMetricsForTesting())
	for _, key := range pages.SourceKeys() {
		t, err := store.Load(context.Background(), key)
		if err != nil {
			return err
		}
		log.Printf("%s: %d rows", pages.Sources[key].File, t.Len())
	}
	return nil
}

func writeCSV(path string, write func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := write(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

type generator struct {
	rng *rand.Rand
}

// loss draws a burned area in hectares: mostly small, occasionally serious.
func (g *generator) loss() float64 {
	ha := math.Exp(g.rng.NormFloat64()*1.8 + 1.5)
	return math.Round(ha*100) / 100
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// summerWeight skews fire months towards July and August.
var summerWeight = []int{1, 2, 4, 4, 3, 6, 12, 14, 8, 4, 2, 1}

func (g *generator) month() int {
	total := 0
	for _, w := range summerWeight {
		total += w
	}
	n := g.rng.IntN(total)
	for i, w := range summerWeight {
		if n < w {
			return i
		}
		n -= w
	}
	return 7
}

func (g *generator) firesSpain(w *csv.Writer) error {
	if err := w.Write([]string{domain.ColRegion, domain.ColYear, domain.ColAreaLost, domain.ColMonth}); err != nil {
		return err
	}
	months := domain.Months.Values()
	for year := firstYear; year <= lastYear; year++ {
		for _, region := range regions {
			for range 3 + g.rng.IntN(25) {
				row := []string{region, strconv.Itoa(year), num(g.loss()), months[g.month()]}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (g *generator) firesNDVI(w *csv.Writer) error {
	header := []string{domain.ColRegionMerged, domain.ColYear, domain.ColMergedCount, domain.ColMergedTotal, domain.ColNDVIMean}
	if err := w.Write(header); err != nil {
		return err
	}
	for year := 2001; year <= lastYear; year++ {
		for i, region := range regions {
			count := 5 + g.rng.IntN(80)
			total := float64(count) * (5 + g.rng.Float64()*40)
			ndvi := 0.25 + float64(i)*0.04 + g.rng.Float64()*0.05
			row := []string{region, strconv.Itoa(year), strconv.Itoa(count), num(math.Round(total)), num(math.Round(ndvi*1000) / 1000)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// ndviMonthly writes the months out of calendar order, the way the source
// file is grouped alphabetically.
func (g *generator) ndviMonthly(w *csv.Writer) error {
	if err := w.Write([]string{domain.ColMonth, domain.ColNDVI}); err != nil {
		return err
	}
	months := domain.Months.Values()
	order := g.rng.Perm(len(months))
	for _, i := range order {
		// Greenest in spring, driest in late summer.
		ndvi := 0.45 + 0.15*math.Cos(2*math.Pi*float64(i-3)/12)
		if err := w.Write([]string{months[i], num(math.Round(ndvi*1000) / 1000)}); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) ndviPrevious(w *csv.Writer) error {
	header := []string{domain.ColFortnight, domain.ColYear, domain.ColProvince, domain.ColNDVIPrevious, domain.ColAreaLost}
	if err := w.Write(header); err != nil {
		return err
	}
	for year := 2001; year <= lastYear; year++ {
		for range 40 {
			row := []string{
				strconv.Itoa(1 + g.rng.IntN(24)),
				strconv.Itoa(year),
				provinces[g.rng.IntN(len(provinces))],
				num(math.Round((0.15+g.rng.Float64()*0.6)*1000) / 1000),
				num(g.loss()),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func days(fn func(day time.Time) error) error {
	start := time.Date(firstDailyYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(lastDailyYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

// fireDay is seeded by the date alone so every daily table agrees on which
// days had a fire.
func fireDay(d time.Time) bool {
	p := float64(summerWeight[d.Month()-1]) / 40
	r := rand.New(rand.NewPCG(uint64(d.Unix()), 42))
	return r.Float64() < p
}

func (g *generator) firesAndalusia(w *csv.Writer) error {
	if err := w.Write([]string{domain.ColDate, domain.ColAreaLost}); err != nil {
		return err
	}
	return days(func(d time.Time) error {
		if !fireDay(d) {
			return nil
		}
		return w.Write([]string{d.Format(domain.DateLayout), num(g.loss())})
	})
}

func (g *generator) airQualityDaily(w *csv.Writer) error {
	if err := w.Write([]string{domain.ColYear, domain.ColFireFlag, domain.ColAirQuality}); err != nil {
		return err
	}
	levels := domain.AirQualityLevels.Values()
	return days(func(d time.Time) error {
		flag, shift := domain.FireNo, 0.0
		if fireDay(d) {
			flag, shift = domain.FireYes, 0.8
		}
		lvl := int(math.Abs(g.rng.NormFloat64()*1.1 + shift))
		lvl = min(lvl, len(levels)-1)
		return w.Write([]string{strconv.Itoa(d.Year()), flag, levels[lvl]})
	})
}

func (g *generator) pollutant(key string) func(*csv.Writer) error {
	level := pollutantLevel[key]
	return func(w *csv.Writer) error {
		if err := w.Write([]string{domain.ColPollutantDate, domain.ColPollutantYear, domain.ColPollutantMean}); err != nil {
			return err
		}
		return days(func(d time.Time) error {
			mean, spread := level[0], level[1]
			if fireDay(d) {
				mean *= 1.25
			}
			v := math.Max(0, mean+g.rng.NormFloat64()*spread)
			// A few gaps, as in the station exports.
			value := num(math.Round(v*10) / 10)
			if g.rng.IntN(50) == 0 {
				value = ""
			}
			return w.Write([]string{d.Format(domain.DateLayout), strconv.Itoa(d.Year()), value})
		})
	}
}

func writeBands(w *csv.Writer) error {
	header := []string{domain.BandPollutantColumn, domain.BandLabelColumn, domain.BandMinColumn, domain.BandMaxColumn, domain.BandColorColumn}
	if err := w.Write(header); err != nil {
		return err
	}
	levels := domain.AirQualityLevels.Values()
	colors := chart.DefaultAirQualityColors
	for _, kind := range domain.PollutantKinds {
		edges := icaBands[kind.Label()]
		for i, level := range levels {
			row := []string{kind.Label(), level, num(edges[i]), num(edges[i+1]), colors[i]}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}
