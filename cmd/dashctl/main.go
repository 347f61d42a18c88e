// Command dashctl renders dashboard pages from the command line, printing the
// chart specs as JSON. It reads the same environment as the server.
//
// Usage:
//
//	dashctl render spain --from 1990 --to 2000
//	dashctl bounds andalusia --pollutant "PM 10"
//	dashctl sources
//	dashctl validate
package main

import (
	"fmt"
	"os"

	"github.com/couchcryptid/wildfire-dashboard/internal/observability"
)

func main() {
	if err := newRootCmd(observability.NewMetrics()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
