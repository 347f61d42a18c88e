package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/wildfire-dashboard/internal/chart"
	"github.com/couchcryptid/wildfire-dashboard/internal/config"
	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-dashboard/internal/observability"
)

var (
	// ErrUnknownPage is returned for a page id missing from the configuration.
	ErrUnknownPage = errors.New("unknown page")

	// ErrNoYears is returned when a page's year source holds no readable year.
	ErrNoYears = errors.New("no years in source")
)

// TableLoader loads a source table by key. Implementations memoize.
type TableLoader interface {
	Load(ctx context.Context, key string) (*domain.Table, error)
}

// SnapshotPublisher sends rendered pages to an external sink.
type SnapshotPublisher interface {
	Publish(ctx context.Context, page *Page) error
}

// Options are the transform parameters taken from configuration.
type Options struct {
	RollingWindow     int
	RollingMinPeriods int
	BandRoundTo       float64
}

// DefaultOptions match the dashboard's published charts.
func DefaultOptions() Options {
	return Options{RollingWindow: 30, RollingMinPeriods: 1, BandRoundTo: domain.DefaultBandRoundTo}
}

// ChartResult is one chart of a rendered page: a spec, or the reason it
// could not be built.
type ChartResult struct {
	ID    string      `json:"id"`
	Spec  *chart.Spec `json:"spec,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Page is a fully rendered dashboard page for one selection.
type Page struct {
	SnapshotID string           `json:"snapshot_id"`
	ID         string           `json:"page"`
	Title      string           `json:"title"`
	Selection  domain.Selection `json:"selection"`
	Bounds     domain.YearRange `json:"bounds"`
	RenderedAt time.Time        `json:"rendered_at"`
	Charts     []ChartResult    `json:"charts"`
}

// PageInfo describes a page for menus.
type PageInfo struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Pollutants []string `json:"pollutants,omitempty"`
	Charts     []string `json:"charts"`
}

// Dashboard renders configured pages from source tables.
type Dashboard struct {
	tables    TableLoader
	pages     *config.Pages
	publisher SnapshotPublisher
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Dashboard. A nil publisher disables snapshot publishing. Every
// chart named by the pages must be known, and every source the charts read
// must be registered.
func New(tables TableLoader, pages *config.Pages, publisher SnapshotPublisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) (*Dashboard, error) {
	for _, page := range pages.Pages {
		for _, c := range page.Charts {
			b, ok := builders[c.ID]
			if !ok {
				return nil, fmt.Errorf("page %q: unknown chart %q", page.ID, c.ID)
			}
			for _, src := range b.sources {
				if _, ok := pages.Sources[src]; !ok {
					return nil, fmt.Errorf("page %q: chart %q reads unregistered source %q", page.ID, c.ID, src)
				}
			}
		}
	}
	return &Dashboard{
		tables:    tables,
		pages:     pages,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// CheckReadiness returns nil once every source has loaded at least once.
func (d *Dashboard) CheckReadiness(_ context.Context) error {
	if !d.ready.Load() {
		return errors.New("source tables have not been loaded yet")
	}
	return nil
}

// Warm loads every registered source once so the first render is fast and
// broken files are reported at startup.
func (d *Dashboard) Warm(ctx context.Context) error {
	var errs []error
	for _, key := range d.pages.SourceKeys() {
		t, err := d.tables.Load(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		d.logger.Debug("source warmed", "key", key, "rows", t.Len())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("warm sources: %w", err)
	}
	d.MarkReady()
	d.logger.Info("sources loaded", "count", len(d.pages.Sources))
	return nil
}

// MarkReady reports the dashboard ready without preloading. Sources then
// load on first use.
func (d *Dashboard) MarkReady() {
	d.ready.Store(true)
	d.metrics.StoreReady.Set(1)
}

// WarmUntilReady retries Warm with exponential backoff until it succeeds or
// the context is cancelled, e.g. while the data volume is still mounting.
func (d *Dashboard) WarmUntilReady(ctx context.Context) error {
	backoff := 200 * time.Millisecond
	maxBackoff := 30 * time.Second
	for {
		err := d.Warm(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d.logger.Warn("warm-up failed, retrying", "error", err, "backoff", backoff)
		if !sharedretry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = sharedretry.NextBackoff(backoff, maxBackoff)
	}
}

// Pages lists the configured pages in menu order.
func (d *Dashboard) Pages() []PageInfo {
	out := make([]PageInfo, 0, len(d.pages.Pages))
	for _, page := range d.pages.Pages {
		info := PageInfo{ID: page.ID, Title: page.Title, Charts: make([]string, 0, len(page.Charts))}
		if page.PollutantSelector {
			for _, k := range domain.PollutantKinds {
				if _, ok := d.pages.PollutantSource(k); ok {
					info.Pollutants = append(info.Pollutants, k.Label())
				}
			}
		}
		for _, c := range page.Charts {
			info.Charts = append(info.Charts, c.ID)
		}
		out = append(out, info)
	}
	return out
}

// Bounds returns the year-selector range of a page. Pages with a pollutant
// selector take it from the selected pollutant, O3 when none is given.
func (d *Dashboard) Bounds(ctx context.Context, pageID string, pollutant domain.PollutantKind) (domain.YearRange, error) {
	page, ok := d.pages.Page(pageID)
	if !ok {
		return domain.YearRange{}, fmt.Errorf("bounds for %q: %w", pageID, ErrUnknownPage)
	}
	return d.bounds(ctx, page, pollutant)
}

func (d *Dashboard) bounds(ctx context.Context, page config.Page, pollutant domain.PollutantKind) (domain.YearRange, error) {
	key := page.YearSource
	if page.PollutantSelector {
		var err error
		if key, err = d.pollutantSource(pollutant); err != nil {
			return domain.YearRange{}, err
		}
	}
	t, err := d.tables.Load(ctx, key)
	if err != nil {
		return domain.YearRange{}, fmt.Errorf("bounds for %q: %w", page.ID, err)
	}
	lo, hi, ok := domain.YearBounds(t, page.YearColumn)
	if !ok {
		return domain.YearRange{}, fmt.Errorf("bounds for %q from %q: %w", page.ID, key, ErrNoYears)
	}
	return domain.YearRange{From: lo, To: hi}, nil
}

func (d *Dashboard) pollutantSource(kind domain.PollutantKind) (string, error) {
	if kind == "" {
		kind = domain.O3
	}
	key, ok := d.pages.PollutantSource(kind)
	if !ok {
		return "", fmt.Errorf("pollutant %q: %w", kind, domain.ErrUnknownPollutant)
	}
	return key, nil
}

// Render recomputes every chart of a page for the selection. Zero From/To
// default to the page's year bounds and an empty pollutant defaults to O3.
// Page.Bounds is only set when a year had to be defaulted.
// A chart that fails is reported in its ChartResult and never fails the page.
func (d *Dashboard) Render(ctx context.Context, pageID string, sel domain.Selection) (*Page, error) {
	page, ok := d.pages.Page(pageID)
	if !ok {
		return nil, fmt.Errorf("render %q: %w", pageID, ErrUnknownPage)
	}
	start := time.Now()

	if page.PollutantSelector {
		if sel.Pollutant == "" {
			sel.Pollutant = domain.O3
		}
		if _, err := d.pollutantSource(sel.Pollutant); err != nil {
			return nil, fmt.Errorf("render %q: %w", pageID, err)
		}
	} else {
		sel.Pollutant = ""
	}

	// Bounds only fill in missing years. When they cannot be read the charts
	// still render and each one reports its own load failure.
	var bounds domain.YearRange
	if sel.From == 0 || sel.To == 0 {
		var err error
		bounds, err = d.bounds(ctx, page, sel.Pollutant)
		if err != nil && !errors.Is(err, ErrNoYears) {
			d.logger.Warn("year bounds unavailable", "page", page.ID, "error", err)
		}
		if sel.From == 0 {
			sel.From = bounds.From
		}
		if sel.To == 0 {
			sel.To = bounds.To
		}
	}

	out := &Page{
		SnapshotID: uuid.NewString(),
		ID:         page.ID,
		Title:      page.Title,
		Selection:  sel,
		Bounds:     bounds,
		RenderedAt: clock.Now().UTC(),
		Charts:     make([]ChartResult, 0, len(page.Charts)),
	}
	for _, c := range page.Charts {
		out.Charts = append(out.Charts, d.renderChart(ctx, page.ID, c, sel))
	}
	d.metrics.PageRenderDuration.WithLabelValues(page.ID).Observe(time.Since(start).Seconds())

	d.publish(ctx, out)
	return out, nil
}

func (d *Dashboard) renderChart(ctx context.Context, pageID string, c config.Chart, sel domain.Selection) ChartResult {
	rc := renderContext{ctx: ctx, tables: d.tables, pages: d.pages, sel: sel, style: c.Style, opts: d.opts}
	spec, err := builders[c.ID].build(rc)
	if err != nil {
		d.logger.Warn("chart failed", "page", pageID, "chart", c.ID, "error", err)
		d.metrics.ChartErrors.WithLabelValues(c.ID).Inc()
		return ChartResult{ID: c.ID, Error: err.Error()}
	}
	d.metrics.ChartsRendered.WithLabelValues(c.ID).Inc()
	return ChartResult{ID: c.ID, Spec: &spec}
}

func (d *Dashboard) publish(ctx context.Context, page *Page) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(ctx, page); err != nil {
		d.logger.Warn("snapshot publish failed", "page", page.ID, "snapshot", page.SnapshotID, "error", err)
		d.metrics.SnapshotsPublished.WithLabelValues("error").Inc()
		return
	}
	d.metrics.SnapshotsPublished.WithLabelValues("success").Inc()
}
