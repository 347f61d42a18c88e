// Package csvstore loads the dashboard's source tables from CSV files under
// a data directory and memoizes them in an LRU cache.
package csvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/wildfire-dashboard/internal/config"
	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-dashboard/internal/observability"
)

// FileStore parses registered sources from disk on every call.
type FileStore struct {
	dir     string
	sources map[string]config.Source
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFileStore creates a store reading the given sources relative to dir.
func NewFileStore(dir string, sources map[string]config.Source, logger *slog.Logger, metrics *observability.Metrics) *FileStore {
	return &FileStore{dir: dir, sources: sources, logger: logger, metrics: metrics}
}

func (s *FileStore) source(key string) (config.Source, string, error) {
	src, ok := s.sources[key]
	if !ok {
		return config.Source{}, "", &domain.DataLoadError{Key: key, Err: domain.ErrUnknownSource}
	}
	path := src.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}
	return src, path, nil
}

// Fingerprint identifies the current content of a source by path, size and
// modification time. A changed fingerprint invalidates cached copies.
func (s *FileStore) Fingerprint(key string) (string, error) {
	_, path, err := s.source(key)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", &domain.DataLoadError{Key: key, Path: path, Err: err}
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano()), nil
}

// Load parses the source registered under key.
func (s *FileStore) Load(ctx context.Context, key string) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, path, err := s.source(key)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	t, err := s.parseFile(path, src)
	if err != nil {
		s.metrics.TableLoadErrors.WithLabelValues(key).Inc()
		loadErr := &domain.DataLoadError{Key: key, Path: path, Err: err}
		var le *lineError
		if errors.As(err, &le) {
			loadErr.Line, loadErr.Err = le.line, le.err
		}
		s.logger.Error("table load failed", "key", key, "path", path, "error", loadErr)
		return nil, loadErr
	}

	s.metrics.TableLoads.WithLabelValues(key).Inc()
	s.metrics.TableLoadTime.WithLabelValues(key).Observe(time.Since(start).Seconds())
	s.logger.Debug("table loaded", "key", key, "rows", t.Len(), "columns", len(t.Columns()))
	return t, nil
}

func (s *FileStore) parseFile(path string, src config.Source) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f, src.Dates)
	if err != nil {
		return nil, err
	}
	if src.YearFrom != "" {
		if !t.HasColumn(src.YearFrom) {
			return nil, fmt.Errorf("year column source %q not in header", src.YearFrom)
		}
		t = domain.WithColumn(t, src.YearColumn, func(r domain.Row) domain.Value {
			if y, ok := r[src.YearFrom].Year(); ok {
				return domain.Int(y)
			}
			return domain.Null()
		})
	}
	return t, nil
}
