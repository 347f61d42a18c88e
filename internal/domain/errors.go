package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWindow is returned by RollingMean for a non-positive window or
	// a min-periods value outside [0, window].
	ErrInvalidWindow = errors.New("invalid rolling window")

	// ErrUnknownPollutant is returned when a pollutant name matches no known kind.
	ErrUnknownPollutant = errors.New("unknown pollutant")

	// ErrUnknownSource is wrapped by DataLoadError when a key is not registered.
	ErrUnknownSource = errors.New("unknown table source")
)

// DataLoadError reports a missing or malformed source table. Loads are never
// partially recovered: any bad row fails the whole table.
type DataLoadError struct {
	Key  string
	Path string
	Line int // 0 when the failure is not tied to a line
	Err  error
}

func (e *DataLoadError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("load table %q from %s: line %d: %v", e.Key, e.Path, e.Line, e.Err)
	case e.Path != "":
		return fmt.Sprintf("load table %q from %s: %v", e.Key, e.Path, e.Err)
	default:
		return fmt.Sprintf("load table %q: %v", e.Key, e.Err)
	}
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// UnknownCategoryError reports a categorical value outside its reference
// ordering, e.g. an air-quality label that is not one of the six ICA levels.
type UnknownCategoryError struct {
	Column   string
	Value    string
	Ordering string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("column %q: value %q is not a known %s", e.Column, e.Value, e.Ordering)
}

// NoBandMatchError reports that no threshold band starts at or below the
// observed maximum, i.e. the band definitions do not cover the data.
type NoBandMatchError struct {
	ObservedMax float64
	Bands       int
}

func (e *NoBandMatchError) Error() string {
	return fmt.Sprintf("no band among %d starts at or below observed max %g", e.Bands, e.ObservedMax)
}
