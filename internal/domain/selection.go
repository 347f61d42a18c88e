package domain

// Selection is the viewer's active filter state. It is passed explicitly to
// every render call; nothing reads it from shared state.
type Selection struct {
	From      int           `json:"from"`
	To        int           `json:"to"`
	Pollutant PollutantKind `json:"pollutant,omitempty"`
}

// YearRange is an inclusive span of years, used for selector bounds.
type YearRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool { return year >= r.From && year <= r.To }
