package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"cloudpico-climate/internal/mqtt"
	"cloudpico-climate/internal/types"
)

func (c *cli) newWatchCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print readings and alerts published by the collector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := c.cfg
			cfg.MQTTClientID = fmt.Sprintf("%s-%d", appName, time.Now().UnixNano())

			client := mqtt.NewClient(cfg, c.logger)
			defer client.Disconnect()
			if err := client.Connect(ctx); err != nil {
				return err
			}

			station := c.cfg.StationID
			if all {
				station = "+"
			}

			// Paho calls handlers from its own goroutines.
			var mu sync.Mutex
			out := cmd.OutOrStdout()
			printf := func(format string, args ...any) {
				mu.Lock()
				defer mu.Unlock()
				_, _ = fmt.Fprintf(out, format, args...)
			}

			err := client.SubscribeTelemetry(station, func(t types.Telemetry) {
				printf("%s  %-8s  %6.2f°C  %6.2f%%\n",
					t.Timestamp.Local().Format(time.TimeOnly), t.StationID, t.Temperature, t.Humidity)
			})
			if err != nil {
				return err
			}
			err = client.SubscribeAlerts(station, func(a types.Alert) {
				printf("%s  %-8s  ALERT %s: %s\n",
					a.Timestamp.Local().Format(time.TimeOnly), a.StationID, a.Kind, a.Message)
			})
			if err != nil {
				return err
			}

			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "watch every station instead of --station")
	return cmd
}
