package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/muurk/climateir/internal/protocol"
	"github.com/muurk/climateir/internal/transmit"
	"github.com/muurk/climateir/internal/ui"
)

// requestFlags binds the flags describing a climate request.
type requestFlags struct {
	mode  string
	temp  float64
	fan   string
	swing string
}

func (f *requestFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.mode, "mode", "cool", "Mode (auto, cool, heat, dry, fan_only, off)")
	fs.Float64Var(&f.temp, "temp", 22, "Target temperature in °C (16-30)")
	fs.StringVar(&f.fan, "fan", "auto", "Fan speed (auto, min, low, medium, high, max)")
	fs.StringVar(&f.swing, "swing", "off", "Swing (off, vertical)")
}

func (f *requestFlags) request() (protocol.Request, error) {
	mode, err := protocol.ParseMode(f.mode)
	if err != nil {
		return protocol.Request{}, err
	}
	fan, err := protocol.ParseFanSpeed(f.fan)
	if err != nil {
		return protocol.Request{}, err
	}
	swing, err := protocol.ParseSwingMode(f.swing)
	if err != nil {
		return protocol.Request{}, err
	}
	return protocol.Request{Mode: mode, Temperature: f.temp, Fan: fan, Swing: swing}, nil
}

// Encode command flags
var (
	encodeReq     requestFlags
	encodeModel   string
	encodePowerOn bool
	encodeHex     bool
	encodeFull    bool
	encodeFormat  string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a request into a Panasonic frame",
	Long: `Build the 27-byte frame for a request and print it annotated byte by byte.

Nothing is transmitted. For toggle-power models (CKP) pass --power-on to
encode as if the unit were already running.`,
	Example: `  # Cool to 22°C at high fan
  climateir encode --mode cool --temp 22 --fan high

  # Hex only, for scripting
  climateir encode --mode heat --temp 25 --hex

  # Switch a running CKP unit off
  climateir encode --model CKP --mode off --power-on`,
	RunE: runEncode,
}

var serializeCmd = &cobra.Command{
	Use:   "serialize",
	Short: "Serialize a request into an IR pulse program",
	Long: `Build the frame for a request and print its pulse program.

The default output is the raw format understood by most IR blasters:
carrier frequency followed by signed mark/space durations in microseconds.`,
	Example: `  # Raw timings
  climateir serialize --mode cool --temp 22

  # LIRC mode2 text, all 27 bytes
  climateir serialize --mode dry --format mode2 --full-frame

  # Draw the waveform
  climateir serialize --mode heat --temp 24 --format waveform`,
	RunE: runSerialize,
}

func init() {
	for _, cmd := range []*cobra.Command{encodeCmd, serializeCmd} {
		encodeReq.register(cmd.Flags())
		cmd.Flags().StringVar(&encodeModel, "model", "DKE", "Remote model (DKE, JKE, LKE, NKE, CKP, RKR, PKE)")
		cmd.Flags().BoolVar(&encodePowerOn, "power-on", false, "Recorded power state for toggle-power models")
	}
	encodeCmd.Flags().BoolVar(&encodeHex, "hex", false, "Print only the frame as hex")
	serializeCmd.Flags().BoolVar(&encodeFull, "full-frame", false, "Transmit all 27 bytes instead of 19")
	serializeCmd.Flags().StringVar(&encodeFormat, "format", transmit.FormatRaw, "Output format (raw, json, mode2, waveform)")

	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(serializeCmd)
}

func buildFromFlags() (protocol.Request, protocol.Model, protocol.Frame, error) {
	req, err := encodeReq.request()
	if err != nil {
		return req, 0, protocol.Frame{}, err
	}
	model, err := protocol.ParseModel(encodeModel)
	if err != nil {
		return req, 0, protocol.Frame{}, err
	}
	frame, _ := protocol.Build(req, model, protocol.ToggleState{On: encodePowerOn})
	return req, model, frame, nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	req, model, frame, err := buildFromFlags()
	if err != nil {
		return err
	}

	if encodeHex {
		fmt.Println(frame.Hex())
		return nil
	}

	p := ui.NewPrinter(os.Stdout)
	p.PrintHeader("Encode", "climateir encode", map[string]string{
		"Model":       model.String(),
		"Mode":        req.Mode.String(),
		"Temperature": fmt.Sprintf("%g°C", req.Temperature),
		"Fan":         req.Fan.String(),
		"Swing":       req.Swing.String(),
	})
	p.PrintFrame(frame)
	return nil
}

func runSerialize(cmd *cobra.Command, args []string) error {
	_, model, frame, err := buildFromFlags()
	if err != nil {
		return err
	}

	var opts []protocol.SerializeOption
	if encodeFull {
		opts = append(opts, protocol.WithFullFrame())
	}
	program := protocol.Serialize(frame, opts...)

	if encodeFormat == "waveform" {
		p := ui.NewPrinter(os.Stdout)
		p.PrintProgram(program)
		return nil
	}

	env := transmit.NewEnvelope("cli", model, frame, program)
	out, err := transmit.Encode(encodeFormat, env)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

// printJSON writes v indented to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
