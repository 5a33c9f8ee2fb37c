package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/climateir/internal/discovery"
	"github.com/muurk/climateir/internal/ui"
)

// Scan command flags
var (
	scanTimeout     time.Duration
	scanService     string
	scanJSON        bool
	scanInteractive bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the network for ESPHome IR bridges",
	Long: `Browse mDNS for ESPHome nodes that can act as IR bridges.

Bridges connect to 'climateir serve' on /ws; use scan to find their
addresses when configuring them. Pass --service _climateir._tcp to find
running hubs instead.`,
	Example: `  # Scan for 10 seconds (default)
  climateir scan

  # Pick a bridge interactively
  climateir scan -i

  # Find running hubs, JSON output
  climateir scan --service _climateir._tcp --json`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", discovery.DefaultScanTimeout, "Scan duration")
	scanCmd.Flags().StringVar(&scanService, "service", discovery.ServiceType, "mDNS service type to browse")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print results as JSON")
	scanCmd.Flags().BoolVarP(&scanInteractive, "interactive", "i", false, "Pick a bridge in a terminal UI")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	scanner := discovery.NewScanner()
	scanner.Timeout = scanTimeout
	scanner.Service = scanService

	if scanInteractive {
		device, err := ui.RunScan(cmd.Context(), scanner.ScanForDevicesWithContext, scanTimeout)
		if err != nil {
			return err
		}
		if device != nil {
			fmt.Println(device.Address())
		}
		return nil
	}

	if !scanJSON {
		fmt.Printf("Scanning for %s (timeout: %s)...\n\n", scanService, scanTimeout)
	}
	devices, err := scanner.ScanForDevicesWithContext(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if scanJSON {
		return printJSON(devices)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the bridge is powered on and joined to this network")
		fmt.Println("  - Multicast must be allowed between this machine and the bridge")
		fmt.Println("  - Try increasing --timeout for slower networks")
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))
	for i, d := range devices {
		fmt.Printf("%d. %s\n", i+1, d.FriendlyName())
		fmt.Printf("   Address:  %s\n", d.Address())
		fmt.Printf("   Hostname: %s\n", d.Hostname)
		if p := d.Platform(); p != "" {
			fmt.Printf("   Platform: %s\n", p)
		}
		if v := d.Version(); v != "" {
			fmt.Printf("   ESPHome:  %s\n", v)
		}
		fmt.Println()
	}
	return nil
}
