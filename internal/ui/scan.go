package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/climateir/internal/discovery"
)

// ScanFunc browses the network for IR bridges.
type ScanFunc func(ctx context.Context) ([]*discovery.Device, error)

type scanStartMsg struct{}

type scanCompleteMsg struct {
	devices []*discovery.Device
	err     error
}

type scanTickMsg time.Time

// scanKeyMap defines key bindings for the scan screen
type scanKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Rescan key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k scanKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Rescan, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k scanKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Rescan, k.Quit},
	}
}

// bridgeItem wraps a Device for use with bubbles/list
type bridgeItem struct {
	device *discovery.Device
}

func (b bridgeItem) FilterValue() string {
	return b.device.Name + " " + b.device.IP + " " + b.device.Hostname
}

func (b bridgeItem) Title() string { return b.device.FriendlyName() }

func (b bridgeItem) Description() string {
	desc := b.device.Address()
	if p := b.device.Platform(); p != "" {
		desc += " • " + p
	}
	if v := b.device.Version(); v != "" {
		desc += " • ESPHome " + v
	}
	return desc
}

// ScanModel shows a discovery scan in progress and then lets the user pick
// one of the bridges found.
type ScanModel struct {
	ctx     context.Context
	scan    ScanFunc
	timeout time.Duration

	Scanning  bool
	Started   time.Time
	Err       error
	Bridges   list.Model
	Selected  *discovery.Device
	Spinner   spinner.Model
	Progress  progress.Model
	Help      help.Model
	Keys      scanKeyMap
	Width     int
	Height    int
	Cancelled bool
}

// NewScanModel creates a scan screen. timeout only drives the progress bar;
// scan is expected to honour its own deadline.
func NewScanModel(ctx context.Context, scan ScanFunc, timeout time.Duration) ScanModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	bridges := list.New(nil, list.NewDefaultDelegate(), MinTerminalWidth, 16)
	bridges.Title = "IR bridges"
	bridges.SetShowStatusBar(false)
	bridges.SetShowHelp(false)
	bridges.Styles.Title = HeaderTitleStyle

	return ScanModel{
		ctx:      ctx,
		scan:     scan,
		timeout:  timeout,
		Bridges:  bridges,
		Spinner:  s,
		Progress: bar,
		Help:     help.New(),
		Keys: scanKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "move up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "move down"),
			),
			Select: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "select"),
			),
			Rescan: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "rescan"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "esc", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
	}
}

// Init starts the first scan.
func (m ScanModel) Init() tea.Cmd {
	return m.startScan()
}

func (m ScanModel) startScan() tea.Cmd {
	ctx, scan := m.ctx, m.scan
	if ctx == nil {
		ctx = context.Background()
	}
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		func() tea.Msg {
			devices, err := scan(ctx)
			return scanCompleteMsg{devices: devices, err: err}
		},
		m.Spinner.Tick,
		tickScan(),
	)
}

func tickScan() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return scanTickMsg(t) })
}

// Update implements tea.Model.
func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.Bridges.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case scanStartMsg:
		m.Scanning = true
		m.Started = time.Now()
		m.Err = nil
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.devices))
		for i, d := range msg.devices {
			items[i] = bridgeItem{device: d}
		}
		return m, m.Bridges.SetItems(items)

	case scanTickMsg:
		if m.Scanning {
			return m, tickScan()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			m.Cancelled = true
			return m, tea.Quit
		case m.Scanning:
			return m, nil
		case key.Matches(msg, m.Keys.Rescan):
			return m, m.startScan()
		case key.Matches(msg, m.Keys.Select):
			if item, ok := m.Bridges.SelectedItem().(bridgeItem); ok {
				m.Selected = item.device
				return m, tea.Quit
			}
			return m, nil
		}
	}

	if !m.Scanning {
		m.Bridges, cmd = m.Bridges.Update(msg)
	}
	return m, cmd
}

// fraction reports how far into the scan window the scan is.
func (m ScanModel) fraction() float64 {
	if m.timeout <= 0 {
		return 0
	}
	f := float64(time.Since(m.Started)) / float64(m.timeout)
	if f > 1 {
		return 1
	}
	return f
}

// View implements tea.Model.
func (m ScanModel) View() string {
	if m.Scanning {
		return lipgloss.JoinVertical(lipgloss.Left,
			HeaderTitleStyle.Render(m.Spinner.View()+" SEARCHING FOR IR BRIDGES"),
			"",
			m.Progress.ViewAs(m.fraction()),
			StatusStyle.Render(fmt.Sprintf("elapsed %s", time.Since(m.Started).Round(time.Second))),
			"",
			m.Help.View(m.Keys),
		)
	}

	var body string
	switch {
	case m.Err != nil:
		body = ErrorMessageStyle.Render(FailureMarker + " scan failed: " + m.Err.Error())
	case len(m.Bridges.Items()) == 0:
		body = lipgloss.NewStyle().Foreground(WarningColor).Bold(true).
			Render("⚠ No bridges answered. Check they are powered and on this network.")
	default:
		body = m.Bridges.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, "", m.Help.View(m.Keys))
}

// RunScan shows the scan screen and returns the bridge the user picked, or
// nil if they quit.
func RunScan(ctx context.Context, scan ScanFunc, timeout time.Duration) (*discovery.Device, error) {
	p := tea.NewProgram(NewScanModel(ctx, scan, timeout), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if m, ok := final.(ScanModel); ok {
		return m.Selected, nil
	}
	return nil, nil
}
