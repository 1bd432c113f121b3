package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cloudpico-climate/internal/chart"
	"cloudpico-climate/internal/db"
	"cloudpico-climate/internal/migrate"
	"cloudpico-climate/internal/types"
)

const windowUsage = "look-back window, 1m to 7d (e.g. 5m, 4h, 12h)"

// windowRange parses the --window flag into a range ending now.
func windowRange(cmd *cobra.Command) (from, to time.Time, err error) {
	s, _ := cmd.Flags().GetString("window")
	d, err := types.ParseWindow(s)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to = time.Now().UTC()
	return to.Add(-d), to, nil
}

func (c *cli) newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show average, minimum and maximum values over a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, to, err := windowRange(cmd)
			if err != nil {
				return err
			}
			history, conn, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			st, err := history.GetStats(cmd.Context(), c.cfg.StationID, from, to)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if st.Count == 0 {
				_, _ = fmt.Fprintln(out, "no data for this period")
				return nil
			}
			_, _ = fmt.Fprintf(out, "Average temperature: %.2f°C (min %.2f, max %.2f)\n", st.AvgTemperature, st.MinTemperature, st.MaxTemperature)
			_, _ = fmt.Fprintf(out, "Average humidity: %.2f%% (min %.2f, max %.2f)\n", st.AvgHumidity, st.MinHumidity, st.MaxHumidity)
			_, _ = fmt.Fprintf(out, "Readings: %d\n", st.Count)
			return nil
		},
	}
	cmd.Flags().String("window", "1h", windowUsage)
	return cmd
}

func (c *cli) newGraphCmd() *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw temperature and humidity sparklines over a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, to, err := windowRange(cmd)
			if err != nil {
				return err
			}
			if width < 8 {
				return fmt.Errorf("--width must be at least 8, got %d", width)
			}
			history, conn, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			readings, err := history.GetReadings(cmd.Context(), c.cfg.StationID, from, to, 0)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), chart.Render(readings, width, c.cfg.AlertThresholds()))
			return nil
		},
	}
	cmd.Flags().String("window", "1h", windowUsage)
	cmd.Flags().IntVar(&width, "width", 60, "chart width in cells")
	return cmd
}

func (c *cli) newAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List alerts raised over a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, to, err := windowRange(cmd)
			if err != nil {
				return err
			}
			history, conn, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			alerts, err := history.GetAlerts(cmd.Context(), c.cfg.StationID, from, to)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(alerts) == 0 {
				_, _ = fmt.Fprintln(out, "no alerts for this period")
				return nil
			}
			for _, a := range alerts {
				_, _ = fmt.Fprintf(out, "%s  %-4s  %s\n", a.Timestamp.Local().Format(time.DateTime), a.Kind, a.Message)
			}
			return nil
		},
	}
	cmd.Flags().String("window", "24h", windowUsage)
	return cmd
}

func (c *cli) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := db.Open(c.cfg.SQLitePath, false, c.logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			applied, err := migrate.Run(cmd.Context(), conn, c.logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				_, _ = fmt.Fprintln(out, "schema up to date")
				return nil
			}
			for _, m := range applied {
				_, _ = fmt.Fprintf(out, "applied %s_%s\n", m.Version, m.Name)
			}
			return nil
		},
	}
}
