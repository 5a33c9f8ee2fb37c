package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/climateir/internal/protocol"
)

// waveformEmitter draws a program as text, one column per bit-mark length.
type waveformEmitter struct {
	carrier int
	b       strings.Builder
	columns int
	limit   int
}

func (w *waveformEmitter) SetCarrier(hz int) { w.carrier = hz }

func (w *waveformEmitter) Mark(d time.Duration) {
	w.draw(MarkStyle, "▔", d)
}

func (w *waveformEmitter) Space(d time.Duration) {
	if d >= protocol.SectionGap {
		w.emit(GapStyle.Render("┊gap┊"), 5)
		return
	}
	w.draw(SpaceStyle, "▁", d)
}

func (w *waveformEmitter) draw(style lipgloss.Style, glyph string, d time.Duration) {
	n := int((d + protocol.BitMark/2) / protocol.BitMark)
	if n < 1 {
		n = 1
	}
	w.emit(style.Render(strings.Repeat(glyph, n)), n)
}

func (w *waveformEmitter) emit(s string, cols int) {
	if w.limit > 0 && w.columns+cols > w.limit {
		w.columns = w.limit
		return
	}
	w.b.WriteString(s)
	w.columns += cols
}

// RenderWaveform draws the start of program within width columns. Marks are
// high, spaces low; a logical 1 has a space three columns long.
func RenderWaveform(program protocol.Program, width int) string {
	if width < 10 {
		width = 10
	}
	w := &waveformEmitter{limit: width}
	program.Replay(w)
	return w.b.String()
}

// PulseSummary describes a program in one line.
func PulseSummary(program protocol.Program) string {
	gap := "no gap"
	if program.GapBefore >= 0 {
		gap = fmt.Sprintf("%s gap before pulse %d", program.Gap, program.GapBefore)
	}
	return fmt.Sprintf("carrier %.0f kHz, %d pulses, %s, on-air %s",
		float64(program.CarrierHz)/1000, len(program.Pulses), gap,
		program.Duration().Round(100*time.Microsecond))
}
