package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jyotish/pkg/core/ephemeris"
	"github.com/matzehuels/jyotish/pkg/errors"
)

// positionsCommand creates the "positions" command.
func (c *CLI) positionsCommand() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Print sidereal positions of the nine grahas",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := time.Now().UTC()
			if at != "" {
				var err error
				if t, err = parseTime(at); err != nil {
					return err
				}
			}
			if err := errors.ValidateDate(t); err != nil {
				return err
			}

			provider, err := c.cfg.Provider()
			if err != nil {
				return err
			}
			positions, err := ephemeris.Positions(provider, t)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.jsonOut {
				return writeJSON(out, positions)
			}
			renderPositions(out, t, positions)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "instant (default now)")
	return cmd
}
