package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// chartCommand creates the "chart" command.
func (c *CLI) chartCommand() *cobra.Command {
	var flags chartFlags
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Compute the ascendant and natal positions",
		Example: `  jyotish chart --birth 1990-07-15T12:00:00+05:30 --lat 28.6139 --lon 77.2090
  jyotish chart -b "1990-07-15 06:30" --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, c.cfg)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			start := time.Now()
			natal, hit, err := runner.ChartWithCacheInfo(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.jsonOut {
				return writeJSON(out, natal)
			}
			renderChart(out, natal)
			printDetail("%s", cacheStatus(hit, time.Since(start)))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// dashaCommand creates the "dasha" command.
func (c *CLI) dashaCommand() *cobra.Command {
	var (
		flags  chartFlags
		antars bool
	)
	cmd := &cobra.Command{
		Use:   "dasha",
		Short: "Show the Vimshottari dasha timeline",
		Long: `Show the nine maha dasha periods from birth and the periods running at
the reference instant (--at, default now).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, c.cfg)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			natal, err := runner.Chart(cmd.Context(), opts)
			if err != nil {
				return err
			}
			rep, err := runner.Dasha(cmd.Context(), natal, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.jsonOut {
				return writeJSON(out, rep)
			}
			renderDasha(out, rep, antars)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&antars, "antar", false, "list the antar dashas of the running maha dasha")
	return cmd
}

// transitsCommand creates the "transits" command.
func (c *CLI) transitsCommand() *cobra.Command {
	var (
		flags      chartFlags
		withTiming bool
	)
	cmd := &cobra.Command{
		Use:   "transits",
		Short: "Analyze current transits against the natal chart",
		Long: `Analyze the transiting bodies at the reference instant against the natal
chart: whole-sign house, quality, conjunctions and aspects.

With --timing, each body's continuous stay in its sign is searched
(retrograde-aware) and conjunctions with natal bodies are timed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, c.cfg)
			if err != nil {
				return err
			}
			opts.Timing = withTiming

			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			natal, err := runner.Chart(cmd.Context(), opts)
			if err != nil {
				return err
			}

			var spin *Spinner
			if withTiming && !c.jsonOut {
				spin = newSpinner(cmd.Context(), cmd.ErrOrStderr(), "Searching sign boundaries...")
				spin.Start()
			}
			prog := newProgress(loggerFromContext(cmd.Context()))
			rep, hit, err := runner.TransitsWithCacheInfo(cmd.Context(), natal, opts, nil)
			if spin != nil {
				spin.Stop()
			}
			if err != nil {
				return err
			}
			if !hit {
				prog.done("Analyzed transits")
			}

			out := cmd.OutOrStdout()
			if c.jsonOut {
				return writeJSON(out, rep)
			}
			renderTransits(out, rep, withTiming)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVarP(&withTiming, "timing", "t", false, "add sign-stay and conjunction timing")
	return cmd
}

// calendarCommand creates the "calendar" command.
func (c *CLI) calendarCommand() *cobra.Command {
	var (
		flags       chartFlags
		year, month int
	)
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Rate every day of a month as good, mixed or challenging",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, c.cfg)
			if err != nil {
				return err
			}
			opts.Year, opts.Month = year, month

			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			natal, err := runner.Chart(cmd.Context(), opts)
			if err != nil {
				return err
			}
			prog := newProgress(loggerFromContext(cmd.Context()))
			rep, hit, err := runner.CalendarWithCacheInfo(cmd.Context(), natal, opts)
			if err != nil {
				return err
			}
			if !hit {
				prog.done("Rated calendar")
			}

			out := cmd.OutOrStdout()
			if c.jsonOut {
				return writeJSON(out, rep)
			}
			renderCalendar(out, rep)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default: year of --at)")
	cmd.Flags().IntVar(&month, "month", 0, "calendar month 1-12 (default: month of --at)")
	return cmd
}
