package logging

import (
	"encoding/hex"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "CLIMATEIR_LOG_LEVEL"

// FileOptions configures rotating file output.
type FileOptions struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Options configures the global logger.
type Options struct {
	Level string      `yaml:"level"`
	JSON  bool        `yaml:"json"`
	File  FileOptions `yaml:"file"`
}

// Initialize creates a new logger with the specified level.
// If level is empty, it checks CLIMATEIR_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	return InitializeWithOptions(Options{Level: level})
}

// InitializeFromEnv initializes the logger from the CLIMATEIR_LOG_LEVEL
// environment variable.
func InitializeFromEnv() error {
	return Initialize("")
}

// InitializeWithOptions builds the global logger. Console output always goes
// to stderr; when opts.File.Path is set, entries are also written to a
// rotating file. Configuring a file without a level logs at info. An
// unrecognized level falls back to info and is reported as a warning.
func InitializeWithOptions(opts Options) error {
	level := opts.Level
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" && opts.File.Path != "" {
		level = "info"
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	zapLevel, known := parseLevel(level)

	encoderCfg := baseEncoderConfig()

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(consoleEncoderConfig(opts.JSON), opts.JSON), zapcore.Lock(os.Stderr), zapLevel),
	}

	if opts.File.Path != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File.Path,
			MaxSize:    opts.File.MaxSizeMB,
			MaxBackups: opts.File.MaxBackups,
			MaxAge:     opts.File.MaxAgeDays,
			Compress:   opts.File.Compress,
		}
		fileCfg := encoderCfg
		fileCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(lj), zapLevel))
	}

	logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	if !known {
		logger.Warn("Unknown log level, using info", zap.String("level", level))
	}
	return nil
}

func baseEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

// consoleEncoderConfig colors levels for terminals only; JSON lines stay
// free of escape codes.
func consoleEncoderConfig(json bool) zapcore.EncoderConfig {
	cfg := baseEncoderConfig()
	if json {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg
}

func newEncoder(cfg zapcore.EncoderConfig, json bool) zapcore.Encoder {
	if json {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// parseLevel maps a level name to a zap level. Unknown names map to info and
// report false.
func parseLevel(level string) (zapcore.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Silent until initialized so CLI output stays clean
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogConnection logs a bridge connection event
func LogConnection(remoteAddr string, event string) {
	Info("Connection event",
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	)
}

// LogHTTPRequest logs an HTTP API request
func LogHTTPRequest(remoteAddr, method, path string, status int, elapsed time.Duration) {
	Info("HTTP request",
		zap.String("remote_addr", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	)
}

// LogFrame logs an encoded frame at debug level
func LogFrame(label string, frame []byte) {
	Debug(label,
		zap.Int("length", len(frame)),
		zap.String("hex", hexDump(frame)),
	)
}

// LogTransmit logs the outcome of handing a pulse program to a sink
func LogTransmit(device, sink string, pulses int, duration time.Duration, err error) {
	fields := []zap.Field{
		zap.String("device", device),
		zap.String("sink", sink),
		zap.Int("pulses", pulses),
		zap.Duration("on_air", duration),
	}
	if err != nil {
		Error("Transmission failed", append(fields, zap.Error(err))...)
		return
	}
	Info("Transmission issued", fields...)
}

// LogRawBytes logs raw bytes (useful for debugging bridge payloads)
func LogRawBytes(label string, data []byte) {
	Debug(label,
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
		zap.String("ascii", asciiDump(data)),
	)
}

func hexDump(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	// Limit to first 256 bytes for logging
	if len(data) > 256 {
		return hex.EncodeToString(data[:256]) + "..."
	}
	return hex.EncodeToString(data)
}

func asciiDump(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if len(data) > 256 {
		data = data[:256]
	}

	result := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			result[i] = b
		} else {
			result[i] = '.'
		}
	}
	return string(result)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
