// Package chart builds declarative chart specifications for the dashboard
// pages. Specs are JSON-serializable with Vega-Lite field names so any
// Vega-Lite renderer can draw them. Builders are pure: they take tables that
// are already filtered and aggregated, and never touch the data store.
package chart

import "encoding/json"

// SchemaURL is written into top-level specs.
const SchemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// Field types.
const (
	Nominal      = "nominal"
	Ordinal      = "ordinal"
	Quantitative = "quantitative"
	Temporal     = "temporal"
)

// Spec is one chart, or one layer / panel of a composite chart.
type Spec struct {
	Schema      string    `json:"$schema,omitempty"`
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title,omitempty"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	Data        *Data     `json:"data,omitempty"`
	Mark        *Mark     `json:"mark,omitempty"`
	Encoding    *Encoding `json:"encoding,omitempty"`
	Params      []Param   `json:"params,omitempty"`
	Layer       []Spec    `json:"layer,omitempty"`
	VConcat     []Spec    `json:"vconcat,omitempty"`
	Resolve     *Resolve  `json:"resolve,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// Data holds inline rows.
type Data struct {
	Values []map[string]any `json:"values"`
}

// Mark describes the graphical primitive.
type Mark struct {
	Type        string   `json:"type"`
	Color       string   `json:"color,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`
	StrokeWidth float64  `json:"strokeWidth,omitempty"`
	InnerRadius float64  `json:"innerRadius,omitempty"`
	Size        float64  `json:"size,omitempty"`
}

// Encoding maps data fields to visual channels.
type Encoding struct {
	X       *Channel  `json:"x,omitempty"`
	Y       *Channel  `json:"y,omitempty"`
	Y2      *Channel  `json:"y2,omitempty"`
	Color   *Channel  `json:"color,omitempty"`
	Size    *Channel  `json:"size,omitempty"`
	Theta   *Channel  `json:"theta,omitempty"`
	Opacity *Channel  `json:"opacity,omitempty"`
	Order   *Channel  `json:"order,omitempty"`
	Facet   *Channel  `json:"facet,omitempty"`
	Tooltip []Channel `json:"tooltip,omitempty"`
}

// Channel is a single encoding. HideAxis and HideLegend serialize as an
// explicit null, which is how Vega-Lite turns a guide off.
type Channel struct {
	Field     string     `json:"field,omitempty"`
	Type      string     `json:"type,omitempty"`
	Aggregate string     `json:"aggregate,omitempty"`
	Title     string     `json:"title,omitempty"`
	Format    string     `json:"format,omitempty"`
	Sort      any        `json:"sort,omitempty"`
	Scale     *Scale     `json:"scale,omitempty"`
	Axis      *Axis      `json:"axis,omitempty"`
	Condition *Condition `json:"condition,omitempty"`
	Value     any        `json:"value,omitempty"`

	HideAxis   bool `json:"-"`
	HideLegend bool `json:"-"`
}

// MarshalJSON emits axis/legend null when the guide is hidden.
func (c Channel) MarshalJSON() ([]byte, error) {
	type plain Channel
	b, err := json.Marshal(plain(c))
	if err != nil || (!c.HideAxis && !c.HideLegend) {
		return b, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	if c.HideAxis {
		fields["axis"] = json.RawMessage("null")
	}
	if c.HideLegend {
		fields["legend"] = json.RawMessage("null")
	}
	return json.Marshal(fields)
}

// Scale customizes a channel's mapping from data to visual values.
type Scale struct {
	Domain []any  `json:"domain,omitempty"`
	Range  []any  `json:"range,omitempty"`
	Scheme string `json:"scheme,omitempty"`
	Zero   *bool  `json:"zero,omitempty"`
}

// Axis customizes a positional guide.
type Axis struct {
	Title      string   `json:"title,omitempty"`
	LabelAngle *float64 `json:"labelAngle,omitempty"`
}

// Condition switches a channel value while a selection param is active.
type Condition struct {
	Param string `json:"param"`
	Empty *bool  `json:"empty,omitempty"`
	Value any    `json:"value"`
}

// Param declares an interactive selection.
type Param struct {
	Name   string     `json:"name"`
	Select *Selection `json:"select"`
}

// Selection configures a point selection.
type Selection struct {
	Type    string   `json:"type"`
	Fields  []string `json:"fields,omitempty"`
	On      string   `json:"on,omitempty"`
	Nearest bool     `json:"nearest,omitempty"`
}

// Resolve sets shared or independent scales across layers and panels.
type Resolve struct {
	Scale map[string]string `json:"scale,omitempty"`
}

// IsPlaceholder reports whether the spec stands in for a chart with no data.
func (s Spec) IsPlaceholder() bool { return s.Placeholder != "" }

func ptr[T any](v T) *T { return &v }

func field(name, typ, title string) *Channel {
	return &Channel{Field: name, Type: typ, Title: title}
}

func tip(name, typ, title string) Channel {
	return Channel{Field: name, Type: typ, Title: title}
}

func independent(channels ...string) *Resolve {
	r := &Resolve{Scale: make(map[string]string, len(channels))}
	for _, c := range channels {
		r.Scale[c] = "independent"
	}
	return r
}
