package chart

import "github.com/couchcryptid/wildfire-dashboard/internal/domain"

// NoDataMessage is shown in place of a chart whose inputs are empty.
const NoDataMessage = "Sin datos para la selección"

// Style carries the visual constants of one chart, loaded from the page
// configuration. Zero fields fall back to the builder's defaults.
type Style struct {
	Title  string            `yaml:"title" json:"title,omitempty"`
	Width  int               `yaml:"width" json:"width,omitempty"`
	Height int               `yaml:"height" json:"height,omitempty"`
	Colors map[string]string `yaml:"colors" json:"colors,omitempty"`
	Scheme string            `yaml:"scheme" json:"scheme,omitempty"`
}

func (s Style) title(fallback string) string {
	if s.Title != "" {
		return s.Title
	}
	return fallback
}

func (s Style) width(fallback int) int {
	if s.Width > 0 {
		return s.Width
	}
	return fallback
}

func (s Style) height(fallback int) int {
	if s.Height > 0 {
		return s.Height
	}
	return fallback
}

func (s Style) color(key, fallback string) string {
	if c, ok := s.Colors[key]; ok && c != "" {
		return c
	}
	return fallback
}

func (s Style) scheme(fallback string) string {
	if s.Scheme != "" {
		return s.Scheme
	}
	return fallback
}

// Placeholder is the spec returned for a chart with no rows to draw.
func Placeholder(id string, s Style, fallbackTitle string) Spec {
	return Spec{
		Schema:      SchemaURL,
		ID:          id,
		Title:       s.title(fallbackTitle),
		Width:       s.Width,
		Height:      s.Height,
		Data:        &Data{Values: []map[string]any{}},
		Placeholder: NoDataMessage,
	}
}

func inline(t *domain.Table) *Data {
	return &Data{Values: t.Records()}
}

func values[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
