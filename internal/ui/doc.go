// Package ui provides terminal output for the climateir CLI.
//
// Most commands are "run once and exit": they print a Header, the work they
// did (an annotated frame dump from RenderFrameDump, a waveform from
// RenderWaveform) and a Result box. Two commands are interactive and run a
// Bubble Tea program instead:
//
//   - RunRemote drives one controller like a handset. Changes are staged
//     locally and sent with enter.
//   - RunScan browses for ESPHome IR bridges and returns the one picked.
//
// Styles live in styles.go and are shared by both kinds of output.
//
// Logging is controlled by CLIMATEIR_LOG_LEVEL. When it is unset zap is
// silent so the rendered output stays clean.
package ui
