package main

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/wildfire-dashboard/internal/adapter/csvstore"
	"github.com/couchcryptid/wildfire-dashboard/internal/config"
	"github.com/couchcryptid/wildfire-dashboard/internal/observability"
	"github.com/couchcryptid/wildfire-dashboard/internal/pipeline"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	dataDir   string
	pagesFile string
	logLevel  string
	pretty    bool
	metrics   *observability.Metrics
}

// env is what a subcommand works with once flags and environment are resolved.
type env struct {
	cfg    *config.Config
	pages  *config.Pages
	store  *csvstore.CachedStore
	dash   *pipeline.Dashboard
	logger *slog.Logger
}

func newRootCmd(metrics *observability.Metrics) *cobra.Command {
	g := &globals{metrics: metrics}
	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Render wildfire dashboard pages as chart specs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	f := root.PersistentFlags()
	f.StringVar(&g.dataDir, "data-dir", "", "directory holding the source CSV files (overrides DATA_DIR)")
	f.StringVar(&g.pagesFile, "pages", "", "page layout YAML (overrides PAGES_FILE)")
	f.StringVar(&g.logLevel, "log-level", "warn", "log level written to stderr")
	f.BoolVar(&g.pretty, "pretty", false, "indent JSON output")

	root.AddCommand(
		newRenderCmd(g),
		newBoundsCmd(g),
		newSourcesCmd(g),
		newValidateCmd(g),
	)
	return root
}

// setup loads configuration, applying flag overrides, and builds the dashboard.
func (g *globals) setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if g.dataDir != "" {
		cfg.DataDir = g.dataDir
	}
	if g.pagesFile != "" {
		cfg.PagesFile = g.pagesFile
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: parseLevel(g.logLevel)}))

	pages, err := config.LoadPages(cfg.PagesFile)
	if err != nil {
		return nil, err
	}
	files := csvstore.NewFileStore(cfg.DataDir, pages.Sources, logger, g.metrics)
	store := csvstore.NewCachedStore(files, cfg.TableCacheSize, g.metrics)
	opts := pipeline.Options{
		RollingWindow:     cfg.RollingWindow,
		RollingMinPeriods: cfg.RollingMinPeriods,
		BandRoundTo:       cfg.BandRoundTo,
	}
	dash, err := pipeline.New(store, pages, nil, opts, logger, g.metrics)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, pages: pages, store: store, dash: dash, logger: logger}, nil
}

func (g *globals) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if g.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn
	}
	return lvl
}
