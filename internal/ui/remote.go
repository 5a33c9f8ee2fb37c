package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/climateir/internal/climate"
	"github.com/muurk/climateir/internal/protocol"
)

// sendTimeout bounds one transmission started from the remote.
const sendTimeout = 10 * time.Second

// remoteModes is the order the mode key cycles through. Off has its own key.
var remoteModes = []protocol.Mode{
	protocol.ModeAuto,
	protocol.ModeCool,
	protocol.ModeHeat,
	protocol.ModeDry,
	protocol.ModeFanOnly,
}

// RemoteController is the part of a climate controller the remote drives.
type RemoteController interface {
	Name() string
	State() climate.State
	Apply(ctx context.Context, req protocol.Request) (climate.Result, error)
}

type sentMsg struct {
	result climate.Result
	err    error
}

// remoteKeyMap defines key bindings for the remote screen
type remoteKeyMap struct {
	Warmer key.Binding
	Cooler key.Binding
	Mode   key.Binding
	Fan    key.Binding
	Swing  key.Binding
	Power  key.Binding
	Send   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k remoteKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Warmer, k.Cooler, k.Mode, k.Send, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k remoteKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Warmer, k.Cooler},
		{k.Mode, k.Fan, k.Swing, k.Power},
		{k.Send, k.Help, k.Quit},
	}
}

func newRemoteKeyMap() remoteKeyMap {
	return remoteKeyMap{
		Warmer: key.NewBinding(
			key.WithKeys("up", "right", "+"),
			key.WithHelp("↑/→", "warmer"),
		),
		Cooler: key.NewBinding(
			key.WithKeys("down", "left", "-"),
			key.WithHelp("↓/←", "cooler"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mode"),
		),
		Fan: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fan"),
		),
		Swing: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "swing"),
		),
		Power: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "on/off"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "send"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// RemoteModel is an interactive handset for one controller. Changes are
// staged locally and only sent when the user presses enter.
type RemoteModel struct {
	ctx        context.Context
	controller RemoteController

	request  protocol.Request
	lastMode protocol.Mode
	dirty    bool

	sending bool
	status  string
	err     error
	sent    int

	Width   int
	Spinner spinner.Model
	Help    help.Model
	Keys    remoteKeyMap
}

// NewRemoteModel creates a remote seeded with the controller's last request.
func NewRemoteModel(ctx context.Context, c RemoteController) RemoteModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	st := c.State()
	req := st.Request
	lastMode := req.Mode
	if lastMode == protocol.ModeOff {
		lastMode = protocol.ModeCool
	}

	status := "nothing sent yet"
	if st.LastFrame != "" {
		status = "last frame " + st.LastFrame
	}

	return RemoteModel{
		ctx:        ctx,
		controller: c,
		request:    req,
		lastMode:   lastMode,
		status:     status,
		Spinner:    s,
		Help:       help.New(),
		Keys:       newRemoteKeyMap(),
	}
}

// Request returns the staged request.
func (m RemoteModel) Request() protocol.Request {
	return m.request
}

// Init implements tea.Model.
func (m RemoteModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m RemoteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Help.Width = msg.Width

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case sentMsg:
		m.sending = false
		m.err = msg.err
		if msg.err != nil {
			m.status = "send failed"
			return m, nil
		}
		m.dirty = false
		m.sent++
		m.status = describeSend(m.sent, msg.result)

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m RemoteModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil

	case key.Matches(msg, m.Keys.Send):
		if m.sending {
			return m, nil
		}
		m.sending = true
		m.err = nil
		m.status = "sending"
		return m, tea.Batch(m.send(m.request), m.Spinner.Tick)
	}

	// Settings are locked while a transmission is in flight.
	if m.sending {
		return m, nil
	}

	before := m.request
	switch {
	case key.Matches(msg, m.Keys.Warmer):
		m.request.Temperature = float64(protocol.ClampTemperature(m.request.Temperature + protocol.TempStep))
	case key.Matches(msg, m.Keys.Cooler):
		m.request.Temperature = float64(protocol.ClampTemperature(m.request.Temperature - protocol.TempStep))
	case key.Matches(msg, m.Keys.Mode):
		m.request.Mode = next(remoteModes, m.lastMode)
		m.lastMode = m.request.Mode
	case key.Matches(msg, m.Keys.Fan):
		m.request.Fan = next(protocol.FanSpeeds, m.request.Fan)
	case key.Matches(msg, m.Keys.Swing):
		if m.request.Swing == protocol.SwingOff {
			m.request.Swing = protocol.SwingVertical
		} else {
			m.request.Swing = protocol.SwingOff
		}
	case key.Matches(msg, m.Keys.Power):
		if m.request.Mode == protocol.ModeOff {
			m.request.Mode = m.lastMode
		} else {
			m.request.Mode = protocol.ModeOff
		}
	}
	if m.request != before {
		m.dirty = true
	}
	return m, nil
}

func (m RemoteModel) send(req protocol.Request) tea.Cmd {
	parent := m.ctx
	c := m.controller
	return func() tea.Msg {
		if parent == nil {
			parent = context.Background()
		}
		ctx, cancel := context.WithTimeout(parent, sendTimeout)
		defer cancel()
		result, err := c.Apply(ctx, req)
		return sentMsg{result: result, err: err}
	}
}

// next returns the value after cur in values, wrapping around. An unknown cur
// yields the first value.
func next[T comparable](values []T, cur T) T {
	i := slices.Index(values, cur)
	return values[(i+1)%len(values)]
}

// describeSend summarizes a transmission by its mode, temperature and
// vane/fan bytes plus checksum.
func describeSend(n int, r climate.Result) string {
	f := r.Frame
	return fmt.Sprintf("%s sent #%d: %02X %02X %02X sum %02X (%s)", SuccessMarker, n,
		f[protocol.ByteModePower], f[protocol.ByteTemp], f[protocol.ByteVaneFan], f[protocol.ByteChecksum],
		r.Program.Duration().Round(time.Millisecond))
}

// View implements tea.Model.
func (m RemoteModel) View() string {
	mode := m.request.Mode.String()
	accent := lipgloss.NewStyle().Foreground(ModeColor(mode)).Bold(true)

	temp := fmt.Sprintf("%.0f°C", m.request.Temperature)
	if m.request.Mode == protocol.ModeFanOnly {
		temp = fmt.Sprintf("%d°C", protocol.TempFanOnly)
	}
	if m.request.Mode == protocol.ModeOff {
		temp = "--"
	}

	settings := renderSetting("Mode", accent.Render(mode)) + "\n" +
		renderSetting("Fan", m.request.Fan.String()) + "\n" +
		renderSetting("Swing", m.request.Swing.String())

	body := lipgloss.JoinVertical(lipgloss.Center,
		RemoteTitleStyle.Render(strings.ToUpper(m.controller.Name())),
		TemperatureStyle.Render(temp),
		settings,
	)

	box := RemoteBoxStyle.Render(body)

	status := m.status
	if m.sending {
		status = m.Spinner.View() + " " + status
	}
	if m.dirty && !m.sending {
		status += " • unsent changes"
	}
	statusLine := StatusStyle.Render(status)
	if m.err != nil {
		statusLine = ErrorMessageStyle.Render(FailureMarker + " " + m.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, box, statusLine, "", m.Help.View(m.Keys))
}

func renderSetting(k, v string) string {
	return SettingKeyStyle.Render(k) + " " + SettingValueStyle.Render(v)
}

// RunRemote runs the remote until the user quits.
func RunRemote(ctx context.Context, c RemoteController) error {
	p := tea.NewProgram(NewRemoteModel(ctx, c), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
