package domain

import (
	"fmt"
	"strings"
)

// PollutantKind is one of the pollutants offered by the Andalusia selector.
type PollutantKind string

const (
	O3   PollutantKind = "O3"
	SO2  PollutantKind = "SO2"
	NO2  PollutantKind = "NO2"
	PM25 PollutantKind = "PM2.5"
	PM10 PollutantKind = "PM10"
)

// PollutantKinds lists the kinds in selector order.
var PollutantKinds = []PollutantKind{O3, SO2, NO2, PM25, PM10}

// Label returns the display name, which is also the key used by the band table.
func (k PollutantKind) Label() string {
	switch k {
	case PM25:
		return "PM 2,5"
	case PM10:
		return "PM 10"
	default:
		return string(k)
	}
}

// ParsePollutantKind accepts canonical codes and display labels, ignoring
// case, spaces and the decimal separator: "pm2.5", "PM 2,5" and "PM25" are all PM2.5.
func ParsePollutantKind(s string) (PollutantKind, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "", ",", "", ".", "", "_", "").Replace(norm)
	switch norm {
	case "O3":
		return O3, nil
	case "SO2":
		return SO2, nil
	case "NO2":
		return NO2, nil
	case "PM25":
		return PM25, nil
	case "PM10":
		return PM10, nil
	default:
		return "", fmt.Errorf("parse pollutant %q: %w", s, ErrUnknownPollutant)
	}
}
