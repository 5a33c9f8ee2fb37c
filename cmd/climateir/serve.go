package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/climateir/internal/climate"
	"github.com/muurk/climateir/internal/config"
	"github.com/muurk/climateir/internal/logging"
	"github.com/muurk/climateir/internal/metrics"
	"github.com/muurk/climateir/internal/server"
	"github.com/muurk/climateir/internal/transmit"
)

// Serve command flags
var (
	serveListen      string
	serveCert        string
	serveKey         string
	serveNoAdvertise bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the IR bridge hub",
	Long: `Expose every configured device over a JSON HTTP API and accept IR bridges
on /ws.

Devices whose sink type is "websocket" send their programs to every bridge
connected to the hub. Other devices use their own sink. Prometheus metrics
are served on /metrics and the hub is announced over mDNS unless disabled.

Flags override the "server" section of the config file.`,
	Example: `  # Serve with settings from the config file
  climateir serve

  # Serve on another port with TLS
  climateir serve --listen :8443 --cert cert.pem --key key.pem`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default from config, or "+config.DefaultListen+")")
	serveCmd.Flags().StringVar(&serveCert, "cert", "", "TLS certificate file")
	serveCmd.Flags().StringVar(&serveKey, "key", "", "TLS private key file")
	serveCmd.Flags().BoolVar(&serveNoAdvertise, "no-advertise", false, "Do not announce the hub over mDNS")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if (serveCert == "") != (serveKey == "") {
		return fmt.Errorf("both --cert and --key must be provided together")
	}

	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	prefs := *reg.Server
	if serveListen != "" {
		prefs.Listen = serveListen
	}
	if serveCert != "" {
		prefs.TLSCert, prefs.TLSKey = serveCert, serveKey
	}
	if serveNoAdvertise {
		prefs.Advertise = false
	}

	promRegistry := metrics.NewRegistry()
	m := metrics.New(promRegistry)
	hub := server.NewHub(m)

	controllers := make([]*climate.Controller, 0, len(reg.Devices))
	sinks := make([]transmit.Sink, 0, len(reg.Devices))
	defer func() {
		for _, s := range sinks {
			if s != hub {
				closeSink(s)
			}
		}
	}()

	for _, name := range reg.DeviceNames() {
		c, sink, err := newController(reg, name, hub, m)
		if err != nil {
			return err
		}
		controllers = append(controllers, c)
		sinks = append(sinks, sink)
		logging.Info("Device ready",
			zap.String("device", name),
			zap.String("model", c.Model().String()),
			zap.String("sink", sink.Name()),
		)
	}
	if len(controllers) == 0 {
		logging.Warn("No devices configured", zap.String("config", reg.Path()))
	}

	srv, err := server.New(server.Config{
		Listen:    prefs.Listen,
		CertPath:  prefs.TLSCert,
		KeyPath:   prefs.TLSKey,
		Advertise: prefs.Advertise,
		Instance:  prefs.Instance,
	}, hub, controllers,
		server.WithMetricsRegistry(promRegistry),
		server.WithPowerStore(reg),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	fmt.Printf("climateir serving %d device(s) on %s\n", len(controllers), prefs.Listen)
	return srv.Run(cmd.Context())
}
