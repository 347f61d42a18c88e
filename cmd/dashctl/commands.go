package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

func newRenderCmd(g *globals) *cobra.Command {
	var (
		from, to  int
		pollutant string
		chartID   string
	)
	cmd := &cobra.Command{
		Use:   "render PAGE",
		Short: "Render every chart of a page for a selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := domain.Selection{From: from, To: to}
			if pollutant != "" {
				kind, err := domain.ParsePollutantKind(pollutant)
				if err != nil {
					return err
				}
				sel.Pollutant = kind
			}

			e, err := g.setup(cmd)
			if err != nil {
				return err
			}
			page, err := e.dash.Render(cmd.Context(), args[0], sel)
			if err != nil {
				return err
			}
			if chartID == "" {
				return g.writeJSON(cmd.OutOrStdout(), page)
			}
			for _, c := range page.Charts {
				if c.ID != chartID {
					continue
				}
				if c.Error != "" {
					return fmt.Errorf("chart %s: %s", c.ID, c.Error)
				}
				return g.writeJSON(cmd.OutOrStdout(), c.Spec)
			}
			return fmt.Errorf("page %s has no chart %q", page.ID, chartID)
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "first year (default: earliest year in the data)")
	cmd.Flags().IntVar(&to, "to", 0, "last year (default: latest year in the data)")
	cmd.Flags().StringVar(&pollutant, "pollutant", "", "pollutant for pages with a selector (default O3)")
	cmd.Flags().StringVar(&chartID, "chart", "", "print only this chart's spec")
	return cmd
}

func newBoundsCmd(g *globals) *cobra.Command {
	var pollutant string
	cmd := &cobra.Command{
		Use:   "bounds PAGE",
		Short: "Print the year selector range of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind domain.PollutantKind
			if pollutant != "" {
				var err error
				if kind, err = domain.ParsePollutantKind(pollutant); err != nil {
					return err
				}
			}
			e, err := g.setup(cmd)
			if err != nil {
				return err
			}
			bounds, err := e.dash.Bounds(cmd.Context(), args[0], kind)
			if err != nil {
				return err
			}
			return g.writeJSON(cmd.OutOrStdout(), bounds)
		},
	}
	cmd.Flags().StringVar(&pollutant, "pollutant", "", "pollutant whose readings give the range (default O3)")
	return cmd
}

type sourceStatus struct {
	Key     string   `json:"key"`
	File    string   `json:"file"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func newSourcesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Load every registered source and report its size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.setup(cmd)
			if err != nil {
				return err
			}
			out := make([]sourceStatus, 0, len(e.pages.Sources))
			for _, key := range e.pages.SourceKeys() {
				st := sourceStatus{Key: key, File: e.pages.Sources[key].File}
				t, err := e.store.Load(cmd.Context(), key)
				if err != nil {
					st.Error = err.Error()
				} else {
					st.Rows, st.Columns = t.Len(), t.Columns()
				}
				out = append(out, st)
			}
			return g.writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

// newValidateCmd checks the page layout, loads every source and renders every
// page over its full range, failing if any chart cannot be built.
func newValidateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every source loads and every chart renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.setup(cmd)
			if err != nil {
				return err
			}
			if err := e.dash.Warm(cmd.Context()); err != nil {
				return err
			}

			var errs []error
			for _, info := range e.dash.Pages() {
				kinds := []domain.PollutantKind{""}
				if len(info.Pollutants) > 0 {
					kinds = kinds[:0]
					for _, label := range info.Pollutants {
						kind, err := domain.ParsePollutantKind(label)
						if err != nil {
							return err
						}
						kinds = append(kinds, kind)
					}
				}
				for _, kind := range kinds {
					page, err := e.dash.Render(cmd.Context(), info.ID, domain.Selection{Pollutant: kind})
					if err != nil {
						errs = append(errs, err)
						continue
					}
					for _, c := range page.Charts {
						if c.Error != "" {
							errs = append(errs, fmt.Errorf("page %s chart %s %s: %s", info.ID, c.ID, kind, c.Error))
						}
					}
				}
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
