package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/climateir/internal/config"
	"github.com/muurk/climateir/internal/transmit"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example configuration",
	Long: `Write an example configuration with two devices: a DKE unit printing raw
timings to stdout and a CKP unit publishing to a local MQTT broker.

An existing file is never overwritten.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports usable by serial sinks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := transmit.ListPorts()
		if err != nil {
			return fmt.Errorf("failed to list serial ports: %w", err)
		}
		if len(ports) == 0 {
			fmt.Println("No serial ports found.")
			return nil
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(portsCmd)
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	reg, err := config.CreateDefaultConfig(path)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s with devices %v\n", reg.Path(), reg.DeviceNames())
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	if _, err := os.Stat(reg.Path()); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "# %s does not exist; showing defaults\n", reg.Path())
	}
	data, err := yaml.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}
