package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - success, checkmarks
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, X marks
	WarningColor = lipgloss.Color("#FFA500") // Orange - warnings
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
	CoolColor    = lipgloss.Color("#4FC3F7") // Light blue - cool mode, marks
	HeatColor    = lipgloss.Color("#FF8A65") // Salmon - heat mode
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

// Shared styles
var (
	HeaderTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				PaddingLeft(2)

	HeaderCommandStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	HeaderParamKeyStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	HeaderParamValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	SuccessTitleStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	ErrorTitleStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	ResultKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(15)

	ResultValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	TroubleshootingTitleStyle = lipgloss.NewStyle().
					Foreground(MutedColor).
					Bold(true)

	TroubleshootingItemStyle = lipgloss.NewStyle().
					Foreground(MutedColor)
)

// Frame dump styles
var (
	ByteIndexStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(4).
			Align(lipgloss.Right)

	ByteHexStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Width(4)

	// ByteChangedStyle marks bytes that differ from the template.
	ByteChangedStyle = lipgloss.NewStyle().
				Foreground(WarningColor).
				Bold(true).
				Width(4)

	ByteBitsStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(10)

	FieldLabelStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	MarkStyle  = lipgloss.NewStyle().Foreground(CoolColor)
	SpaceStyle = lipgloss.NewStyle().Foreground(MutedColor)
	GapStyle   = lipgloss.NewStyle().Foreground(WarningColor)
)

// Remote styles
var (
	RemoteBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(1, 3)

	RemoteTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true)

	TemperatureStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				Padding(0, 1)

	SettingKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(8)

	SettingValueStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)
)

// Status markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
)

// ModeColor returns the accent color for a mode name.
func ModeColor(mode string) lipgloss.Color {
	switch mode {
	case "cool", "dry":
		return CoolColor
	case "heat":
		return HeatColor
	case "off":
		return MutedColor
	default:
		return SuccessColor
	}
}

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// RenderHorizontalDivider creates a horizontal line of the specified width
func RenderHorizontalDivider(width int, char string) string {
	return lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Render(strings.Repeat(char, width))
}
