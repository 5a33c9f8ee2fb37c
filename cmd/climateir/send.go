package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/climateir/internal/protocol"
	"github.com/muurk/climateir/internal/transmit"
	"github.com/muurk/climateir/internal/ui"
)

// Send command flags
var (
	sendReq     requestFlags
	sendTimeout time.Duration
	sendQuiet   bool
)

var sendCmd = &cobra.Command{
	Use:   "send <device>",
	Short: "Send a request to a configured device",
	Long: `Encode a request for a configured device and deliver it to the device's sink.

For toggle-power models the recorded power state is read from the config
file and written back after a successful power change.`,
	Example: `  # Cool the living room to 22°C
  climateir send living-room --mode cool --temp 22

  # Switch the bedroom off
  climateir send bedroom --mode off`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	sendReq.register(sendCmd.Flags())
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 15*time.Second, "Give up if the sink has not accepted the program by then")
	sendCmd.Flags().BoolVarP(&sendQuiet, "quiet", "q", false, "Print nothing on success")

	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	name := args[0]
	req, err := sendReq.request()
	if err != nil {
		return err
	}

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	c, sink, err := newController(reg, name, nil, nil)
	if err != nil {
		return err
	}
	defer closeSink(sink)

	ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
	defer cancel()

	p := ui.NewPrinter(os.Stderr)
	result, err := c.Apply(ctx, req)
	if err != nil {
		p.PrintError("Send failed", err, troubleshoot(err))
		return fmt.Errorf("send to %s failed", name)
	}
	if sendQuiet {
		return nil
	}

	st := c.State()
	details := map[string]string{
		"Device":   name,
		"Model":    st.Model.String(),
		"Sink":     st.Sink,
		"Frame":    result.Frame.Hex(),
		"Pulses":   fmt.Sprintf("%d", len(result.Program.Pulses)),
		"On air":   result.Program.Duration().Round(100 * time.Microsecond).String(),
		"Envelope": result.Envelope.ID,
	}
	if c.Traits().TogglePower {
		details["Power"] = fmt.Sprintf("%v", st.PowerOn)
	}
	if req.Mode == protocol.ModeOff && !c.Traits().TogglePower {
		details["Note"] = "off encodes like auto on this model"
	}
	p.PrintSuccess("Program sent", details)
	return nil
}

func troubleshoot(err error) []string {
	var terr *transmit.Error
	if !errors.As(err, &terr) {
		return nil
	}
	switch terr.Sink {
	case transmit.TypeMQTT:
		return []string{
			"Check the broker address and credentials in the config file",
			"Make sure the bridge subscribes to <prefix>/<device>/ir",
		}
	case transmit.TypeSerial:
		return []string{
			"Run 'climateir ports' to list serial ports",
			"Check that no other program holds the port open",
		}
	case transmit.TypeFile:
		return []string{"Check that the directory exists and is writable"}
	}
	return nil
}
