package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitializeSilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	require.NoError(t, Initialize(""))
	assert.False(t, GetLogger().Core().Enabled(zapcore.ErrorLevel))
}

func TestInitializeFromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")

	require.NoError(t, InitializeFromEnv())
	assert.True(t, GetLogger().Core().Enabled(zapcore.WarnLevel))
	assert.False(t, GetLogger().Core().Enabled(zapcore.InfoLevel))
}

func TestInitializeUnknownLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, Initialize("verbose"))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	assert.True(t, GetLogger().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, GetLogger().Core().Enabled(zapcore.DebugLevel))
}

func TestInitializeFileOnlyDefaultsToInfo(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	path := filepath.Join(t.TempDir(), "climateir.log")

	require.NoError(t, InitializeWithOptions(Options{File: FileOptions{Path: path}}))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })
	Warn("bridge went away")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Contains(t, string(data), `"level":"warn"`)
}

func TestConsoleEncoderConfig(t *testing.T) {
	tests := []struct {
		name      string
		json      bool
		wantColor bool
	}{
		{"console", false, true},
		{"json", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := newEncoder(consoleEncoderConfig(tt.json), tt.json)
			buf, err := enc.EncodeEntry(zapcore.Entry{Level: zapcore.WarnLevel, Message: "hi"}, nil)
			require.NoError(t, err)
			defer buf.Free()

			out := buf.String()
			assert.Equal(t, tt.wantColor, strings.Contains(out, "\x1b["), out)
			assert.Contains(t, out, "WARN")
		})
	}
}

func TestInitializeWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "climateir.log")

	require.NoError(t, InitializeWithOptions(Options{Level: "debug", File: FileOptions{Path: path, MaxSizeMB: 1}}))
	Info("hello")
	Sync()

	assert.FileExists(t, path)
}

func TestLogTransmit(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	LogTransmit("living-room", "stdout", 152, 160*time.Millisecond, nil)
	LogTransmit("living-room", "mqtt", 152, 160*time.Millisecond, errors.New("broker down"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Transmission issued", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "mqtt", entries[1].ContextMap()["sink"])
}

func TestDumps(t *testing.T) {
	assert.Equal(t, "0220e0", hexDump([]byte{0x02, 0x20, 0xE0}))
	assert.Equal(t, "A.b", asciiDump([]byte{'A', 0x00, 'b'}))
	assert.Equal(t, "", hexDump(nil))
}
