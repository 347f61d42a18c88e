package config

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/wildfire-dashboard/internal/chart"
	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

//go:embed pages.yaml
var defaultPages []byte

// Source registers one input table under a logical key.
type Source struct {
	File string `yaml:"file"`
	// Dates lists columns parsed as calendar days.
	Dates []string `yaml:"dates,omitempty"`
	// YearFrom names a date column to derive YearColumn from, for files that
	// carry no year of their own.
	YearFrom   string `yaml:"year_from,omitempty"`
	YearColumn string `yaml:"year_column,omitempty"`
}

// Chart places one chart on a page with its visual constants.
type Chart struct {
	ID          string `yaml:"id"`
	chart.Style `yaml:",inline"`
}

// Page describes one dashboard page.
type Page struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	// YearSource and YearColumn give the year selector bounds. Pages with a
	// pollutant selector take them from the selected pollutant's source.
	YearSource        string  `yaml:"year_source,omitempty"`
	YearColumn        string  `yaml:"year_column"`
	PollutantSelector bool    `yaml:"pollutant_selector,omitempty"`
	Charts            []Chart `yaml:"charts"`
}

// Pages is the dashboard layout: the source registry, the pollutant sources
// and the pages in menu order.
type Pages struct {
	Sources    map[string]Source `yaml:"sources"`
	Pollutants map[string]string `yaml:"pollutants"`
	Pages      []Page            `yaml:"pages"`
}

// LoadPages parses the page layout from path, or the embedded default when
// path is empty.
func LoadPages(path string) (*Pages, error) {
	data := defaultPages
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read pages file: %w", err)
		}
		data = b
	}
	return ParsePages(data)
}

// ParsePages decodes and validates a page layout.
func ParsePages(data []byte) (*Pages, error) {
	var p Pages
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode pages: %w", err)
	}
	for key, src := range p.Sources {
		if src.YearFrom != "" && src.YearColumn == "" {
			src.YearColumn = domain.ColYear
			p.Sources[key] = src
		}
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Pages) validate() error {
	if len(p.Pages) == 0 {
		return errors.New("validate pages: no pages defined")
	}
	for key, src := range p.Sources {
		if src.File == "" {
			return fmt.Errorf("validate pages: source %q has no file", key)
		}
	}
	for name, key := range p.Pollutants {
		if _, err := domain.ParsePollutantKind(name); err != nil {
			return fmt.Errorf("validate pages: %w", err)
		}
		if _, ok := p.Sources[key]; !ok {
			return fmt.Errorf("validate pages: pollutant %q uses unknown source %q", name, key)
		}
	}

	seen := make(map[string]bool, len(p.Pages))
	for _, page := range p.Pages {
		if page.ID == "" {
			return errors.New("validate pages: page without id")
		}
		if seen[page.ID] {
			return fmt.Errorf("validate pages: duplicate page %q", page.ID)
		}
		seen[page.ID] = true

		if page.YearColumn == "" {
			return fmt.Errorf("validate pages: page %q has no year_column", page.ID)
		}
		if !page.PollutantSelector {
			if _, ok := p.Sources[page.YearSource]; !ok {
				return fmt.Errorf("validate pages: page %q uses unknown year source %q", page.ID, page.YearSource)
			}
		} else if len(p.Pollutants) == 0 {
			return fmt.Errorf("validate pages: page %q has a pollutant selector but no pollutants are defined", page.ID)
		}

		charts := make(map[string]bool, len(page.Charts))
		for _, c := range page.Charts {
			if charts[c.ID] {
				return fmt.Errorf("validate pages: page %q lists chart %q twice", page.ID, c.ID)
			}
			charts[c.ID] = true
		}
	}
	return nil
}

// Page returns the page with the given id.
func (p *Pages) Page(id string) (Page, bool) {
	for _, page := range p.Pages {
		if page.ID == id {
			return page, true
		}
	}
	return Page{}, false
}

// PollutantSource returns the source key holding readings for kind.
func (p *Pages) PollutantSource(kind domain.PollutantKind) (string, bool) {
	for name, key := range p.Pollutants {
		if k, err := domain.ParsePollutantKind(name); err == nil && k == kind {
			return key, true
		}
	}
	return "", false
}

// SourceKeys returns every registered source key in sorted order.
func (p *Pages) SourceKeys() []string {
	return slices.Sorted(maps.Keys(p.Sources))
}
