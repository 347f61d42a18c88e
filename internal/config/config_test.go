package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Empty(t, cfg.PagesFile)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.WarmupOnStart)
	assert.Equal(t, 64, cfg.TableCacheSize)
	assert.Zero(t, cfg.TableCacheTTL)
	assert.Equal(t, 30, cfg.RollingWindow)
	assert.Equal(t, 1, cfg.RollingMinPeriods)
	assert.InDelta(t, 10, cfg.BandRoundTo, 0)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "dashboard-snapshots", cfg.KafkaSnapshotTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/data")
	t.Setenv("PAGES_FILE", "/etc/dashboard/pages.yaml")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("WARMUP_ON_START", "false")
	t.Setenv("TABLE_CACHE_SIZE", "8")
	t.Setenv("TABLE_CACHE_TTL", "5m")
	t.Setenv("ROLLING_WINDOW", "7")
	t.Setenv("ROLLING_MIN_PERIODS", "3")
	t.Setenv("BAND_ROUND_TO", "5")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_SNAPSHOT_TOPIC", "snapshots")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/data", cfg.DataDir)
	assert.Equal(t, "/etc/dashboard/pages.yaml", cfg.PagesFile)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.WarmupOnStart)
	assert.Equal(t, 8, cfg.TableCacheSize)
	assert.Equal(t, 5*time.Minute, cfg.TableCacheTTL)
	assert.Equal(t, 7, cfg.RollingWindow)
	assert.Equal(t, 3, cfg.RollingMinPeriods)
	assert.InDelta(t, 5, cfg.BandRoundTo, 0)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "snapshots", cfg.KafkaSnapshotTopic)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"TABLE_CACHE_SIZE", "0"},
		{"TABLE_CACHE_SIZE", "many"},
		{"TABLE_CACHE_TTL", "-1s"},
		{"ROLLING_WINDOW", "0"},
		{"ROLLING_MIN_PERIODS", "31"},
		{"ROLLING_MIN_PERIODS", "-1"},
		{"BAND_ROUND_TO", "0"},
		{"WARMUP_ON_START", "maybe"},
		{"KAFKA_ENABLED", "yes please"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_KafkaEnabledNeedsBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoadPages_Embedded(t *testing.T) {
	pages, err := LoadPages("")
	require.NoError(t, err)

	require.Len(t, pages.Pages, 2)
	spain, ok := pages.Page("spain")
	require.True(t, ok)
	assert.Equal(t, "fires_spain", spain.YearSource)
	assert.Len(t, spain.Charts, 6)

	andalusia, ok := pages.Page("andalusia")
	require.True(t, ok)
	assert.True(t, andalusia.PollutantSelector)
	assert.Equal(t, domain.ColPollutantYear, andalusia.YearColumn)
	assert.Equal(t, "#A52DA4", andalusia.Charts[0].Colors["Extremadamente desfavorable"])
	assert.Equal(t, "#1f77b4", andalusia.Charts[1].Colors[domain.FireNo])

	for _, kind := range domain.PollutantKinds {
		key, ok := pages.PollutantSource(kind)
		assert.True(t, ok, kind)
		assert.Contains(t, pages.Sources, key)
	}

	fires := pages.Sources["fires_andalusia"]
	assert.Equal(t, "fecha", fires.YearFrom)
	assert.Equal(t, domain.ColYear, fires.YearColumn)
	assert.Equal(t, []string{"fecha"}, fires.Dates)

	_, ok = pages.Page("portugal")
	assert.False(t, ok)
}

func TestLoadPages_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  fires: {file: fires.csv}
pages:
  - id: only
    title: Only page
    year_source: fires
    year_column: anio
    charts:
      - id: fires_by_region
        width: 320
`), 0o600))

	pages, err := LoadPages(path)
	require.NoError(t, err)
	page, ok := pages.Page("only")
	require.True(t, ok)
	require.Len(t, page.Charts, 1)
	assert.Equal(t, 320, page.Charts[0].Width)
	assert.Equal(t, []string{"fires"}, pages.SourceKeys())
}

func TestLoadPages_MissingFile(t *testing.T) {
	_, err := LoadPages(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read pages file")
}

func TestParsePages_Invalid(t *testing.T) {
	tests := map[string]string{
		"no pages":          "sources: {a: {file: a.csv}}",
		"unknown source":    "pages: [{id: p, year_source: missing, year_column: anio}]",
		"duplicate page":    "sources: {a: {file: a.csv}}\npages: [{id: p, year_source: a, year_column: anio}, {id: p, year_source: a, year_column: anio}]",
		"bad pollutant":     "sources: {a: {file: a.csv}}\npollutants: {CO: a}\npages: [{id: p, year_source: a, year_column: anio}]",
		"duplicate chart":   "sources: {a: {file: a.csv}}\npages: [{id: p, year_source: a, year_column: anio, charts: [{id: x}, {id: x}]}]",
		"selector, no data": "pages: [{id: p, year_column: AÑO, pollutant_selector: true}]",
		"source no file":    "sources: {a: {dates: [d]}}\npages: [{id: p, year_source: a, year_column: anio}]",
		"not yaml":          "pages: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePages([]byte(doc))
			require.Error(t, err)
		})
	}
}
