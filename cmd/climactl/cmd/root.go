package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cloudpico-climate/internal/config"
	"cloudpico-climate/internal/db"
	"cloudpico-climate/internal/logging"
	"cloudpico-climate/internal/migrate"
	"cloudpico-climate/internal/store"
)

const appName = "climactl"

// cli holds what the subcommands share: env config overridden by flags.
type cli struct {
	version string
	cfg     config.Config
	logger  *slog.Logger
}

// Execute runs climactl and exits non-zero on error.
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCmd(version).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(version string) *cobra.Command {
	c := &cli{version: version}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Inspect the climate monitor and its history",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("db", "", "sqlite database path (env SQLITE_PATH)")
	flags.String("station", "", "station id (env STATION_ID)")
	flags.String("port", "", "serial device, empty to auto-detect (env SERIAL_PORT)")
	flags.Int("baud", 0, "serial baud rate (env SERIAL_BAUD)")

	root.AddCommand(
		c.newPortsCmd(),
		c.newGetCmd(),
		c.newStatsCmd(),
		c.newGraphCmd(),
		c.newAlertsCmd(),
		c.newWatchCmd(),
		c.newMigrateCmd(),
		c.newVersionCmd(),
	)
	return root
}

func (c *cli) load(cmd *cobra.Command) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.SQLitePath, _ = flags.GetString("db")
	}
	if flags.Changed("station") {
		cfg.StationID, _ = flags.GetString("station")
	}
	if flags.Changed("port") {
		cfg.SerialPort, _ = flags.GetString("port")
	}
	if flags.Changed("baud") {
		cfg.SerialBaud, _ = flags.GetInt("baud")
	}

	c.cfg = cfg
	// Results go to stdout; logs stay on stderr.
	c.logger = logging.NewWithWriter(cmd.ErrOrStderr(), cfg, c.version, appName)
	return nil
}

// openStore opens the history database, bringing its schema up to date.
func (c *cli) openStore(ctx context.Context) (*store.Store, *sql.DB, error) {
	conn, err := db.Open(c.cfg.SQLitePath, c.cfg.LogLevel <= slog.LevelDebug, c.logger)
	if err != nil {
		return nil, nil, err
	}
	if _, err := migrate.Run(ctx, conn, c.logger); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return store.New(conn, c.logger), conn, nil
}

func (c *cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, c.version)
		},
	}
}
