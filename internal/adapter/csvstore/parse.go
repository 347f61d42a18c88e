package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

// dateLayouts are tried in order for declared date columns.
var dateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
}

// lineError marks a parse failure on a specific input line.
type lineError struct {
	line int
	err  error
}

func (e *lineError) Error() string { return fmt.Sprintf("line %d: %v", e.line, e.err) }
func (e *lineError) Unwrap() error { return e.err }

// Parse reads a headed CSV table. Columns listed in dates must hold calendar
// days; every other cell becomes a number when it parses as one and a string
// otherwise. Empty and NaN cells are null. Any malformed row fails the whole
// table.
func Parse(r io.Reader, dates []string) (*domain.Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	for _, d := range dates {
		if !slices.Contains(columns, d) {
			return nil, fmt.Errorf("date column %q not in header", d)
		}
	}
	cr.FieldsPerRecord = len(columns)

	isDate := make([]bool, len(columns))
	for i, c := range columns {
		isDate[i] = slices.Contains(dates, c)
	}

	var rows []domain.Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &lineError{line: perr.Line, err: perr.Err}
			}
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		row := make(domain.Row, len(columns))
		for i, raw := range record {
			v, err := parseCell(raw, isDate[i])
			if err != nil {
				return nil, &lineError{line: line, err: fmt.Errorf("column %q: %w", columns[i], err)}
			}
			row[columns[i]] = v
		}
		rows = append(rows, row)
	}
	return domain.NewTable(columns, rows), nil
}

func parseCell(raw string, date bool) (domain.Value, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return domain.Null(), nil
	}
	if date {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return domain.Date(t), nil
			}
		}
		return domain.Value{}, fmt.Errorf("invalid date %q", s)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
		return domain.Num(f), nil
	}
	return domain.Str(s), nil
}
