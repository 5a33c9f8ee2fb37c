// Climateir drives Panasonic air conditioners over infrared.
//
// It encodes climate requests into Panasonic frames, serializes them into
// pulse programs and hands those to a sink: stdout, a file, an MQTT broker,
// a USB serial blaster or ESPHome IR bridges connected to the built-in hub.
//
// Usage:
//
//	climateir [command] [flags]
//
// See 'climateir --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/climateir/internal/config"
	"github.com/muurk/climateir/internal/logging"
	"github.com/muurk/climateir/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "climateir",
	Short: "Panasonic air conditioner IR controller",
	Long: `Encode Panasonic air conditioner commands and send them over infrared.

Devices are declared in a YAML configuration file. Each device names its
remote model (DKE, JKE, LKE, NKE, CKP, RKR, PKE) and the sink its pulse
programs are delivered to.

Run 'climateir config init' to write an example configuration.`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: user config dir/climateir/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config and "+logging.LogLevelEnvVar)

	rootCmd.AddCommand(versionCmd)
}

// setupLogging configures the logger from the config file, then lets the
// --log-level flag override the level. A broken config file is reported by
// the commands that need it, not here.
func setupLogging(cmd *cobra.Command, args []string) error {
	opts := logging.Options{}
	if reg, err := loadRegistry(); err == nil {
		opts = reg.Logging
	}
	if logLevel != "" {
		opts.Level = logLevel
	}
	if err := logging.InitializeWithOptions(opts); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

var (
	registry    *config.Registry
	registryErr error
	registrySet bool
)

// loadRegistry loads the configuration once per process.
func loadRegistry() (*config.Registry, error) {
	if registrySet {
		return registry, registryErr
	}
	registrySet = true
	if configPath != "" {
		registry, registryErr = config.Load(configPath)
	} else {
		registry, registryErr = config.LoadRegistry()
	}
	return registry, registryErr
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Printf("climateir %s (commit: %s, %s, %s)\n", info.Version, info.Commit, info.GoVersion, info.Platform)
	},
}
