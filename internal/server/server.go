package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/muurk/climateir/internal/climate"
	"github.com/muurk/climateir/internal/discovery"
	"github.com/muurk/climateir/internal/logging"
	"github.com/muurk/climateir/internal/metrics"
	"github.com/muurk/climateir/internal/version"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	Listen    string
	CertPath  string // TLS is enabled when both CertPath and KeyPath are set
	KeyPath   string
	Advertise bool   // Announce the hub over mDNS
	Instance  string // mDNS instance name

	ShutdownTimeout time.Duration
}

// PowerStore persists the recorded power state of toggle-power devices.
type PowerStore interface {
	SetPowerState(name string, on bool) error
}

// Option customizes a Server.
type Option func(*Server)

// WithMetricsRegistry serves reg at /metrics.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithPowerStore persists power states set through the API.
func WithPowerStore(store PowerStore) Option {
	return func(s *Server) { s.power = store }
}

// Server exposes the controllers over HTTP and hosts the bridge hub.
type Server struct {
	config      Config
	hub         *Hub
	controllers map[string]*climate.Controller
	names       []string
	registry    *prometheus.Registry
	power       PowerStore

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	advertiser *discovery.Advertiser
}

// New creates a server for the given controllers.
func New(config Config, hub *Hub, controllers []*climate.Controller, opts ...Option) (*Server, error) {
	if hub == nil {
		return nil, errors.New("server requires a hub")
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		config:      config,
		hub:         hub,
		controllers: make(map[string]*climate.Controller, len(controllers)),
	}
	for _, c := range controllers {
		if _, dup := s.controllers[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate device name %q", c.Name())
		}
		s.controllers[c.Name()] = c
		s.names = append(s.names, c.Name())
	}
	sort.Strings(s.names)

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the HTTP handler with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/devices", s.handleListDevices)
	mux.HandleFunc("GET /api/devices/{name}", s.handleGetDevice)
	mux.HandleFunc("PUT /api/devices/{name}/state", s.handlePutState)
	mux.HandleFunc("POST /api/devices/{name}/preview", s.handlePreview)
	mux.HandleFunc("PUT /api/devices/{name}/power", s.handlePutPower)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /ws", s.hub)
	if s.registry != nil {
		mux.Handle("GET /metrics", metrics.Handler(s.registry))
	}
	return logRequests(mux)
}

// Addr returns the listening address once Run has started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}

	scheme := "http"
	if s.config.CertPath != "" && s.config.KeyPath != "" {
		tlsConfig, err := NewTLSConfig(s.config.CertPath, s.config.KeyPath)
		if err != nil {
			_ = listener.Close()
			return err
		}
		logging.Info("TLS Configuration", zap.Any("tls_info", GetTLSInfo(tlsConfig)))
		listener = tls.NewListener(listener, tlsConfig)
		scheme = "https"
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = httpServer
	s.mu.Unlock()

	logging.Info("Starting climateir server",
		zap.String("addr", listener.Addr().String()),
		zap.String("scheme", scheme),
		zap.Strings("devices", s.names),
	)

	if s.config.Advertise {
		s.advertise(listener.Addr(), scheme)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown signal received, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) advertise(addr net.Addr, scheme string) {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return
	}
	txt := []string{
		"version=" + version.Version,
		"scheme=" + scheme,
		"path=/ws",
		"devices=" + strconv.Itoa(len(s.names)),
	}
	advertiser, err := discovery.Advertise(s.config.Instance, tcpAddr.Port, txt)
	if err != nil {
		logging.Warn("mDNS advertisement failed", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.advertiser = advertiser
	s.mu.Unlock()
	logging.Info("Advertising hub over mDNS",
		zap.String("service", discovery.HubServiceType),
		zap.Int("port", tcpAddr.Port),
	)
}

// Shutdown stops accepting requests, disconnects bridges and withdraws the
// mDNS advertisement.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	advertiser := s.advertiser
	s.advertiser = nil
	s.mu.Unlock()

	advertiser.Shutdown()
	_ = s.hub.Close()

	var err error
	if httpServer != nil {
		if err = httpServer.Shutdown(ctx); err != nil {
			logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
			_ = httpServer.Close()
		}
	}

	logging.Info("Server stopped")
	logging.Sync()
	return err
}
