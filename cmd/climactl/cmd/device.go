package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cloudpico-climate/internal/protocol"
	"cloudpico-climate/internal/serialport"
	"cloudpico-climate/internal/types"
)

func (c *cli) newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List USB serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ports, err := serialport.ListUSB()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ports) == 0 {
				_, _ = fmt.Fprintln(out, serialport.ErrNoPorts)
				return nil
			}
			for _, p := range ports {
				_, _ = fmt.Fprintln(out, p)
			}
			return nil
		},
	}
}

func (c *cli) newGetCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Request one reading from the monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			port, name, err := serialport.OpenOrDetect(c.cfg.SerialPort, c.cfg.SerialBaud, c.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := port.Close(); err != nil {
					c.logger.Error("serial close", "port", name, "error", err)
				}
			}()

			r, err := serialport.NewClient(port, c.cfg.ResponseDelay).Request(cmd.Context())
			if err != nil {
				return describeRequestError(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Temperature: %s°C\nHumidity: %s%%\n", r.Temperature, r.Humidity)

			if !save {
				return nil
			}
			history, conn, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()
			return history.InsertReading(cmd.Context(), types.Telemetry{
				StationID:   c.cfg.StationID,
				Timestamp:   time.Now().UTC(),
				Temperature: float64(r.Temperature.Value),
				Humidity:    float64(r.Humidity.Value),
			})
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "also store the reading in the history database")
	return cmd
}

func describeRequestError(err error) error {
	switch {
	case errors.Is(err, protocol.ErrNoResponse):
		return errors.New("device did not respond")
	case errors.Is(err, protocol.ErrSensorFault):
		return errors.New("device could not read its sensor")
	case errors.Is(err, protocol.ErrMalformed):
		return fmt.Errorf("unexpected reply format: %w", err)
	default:
		return err
	}
}
