// Package tui renders command output for terminals.
package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

const (
	colorOK      = "#22c55e"
	colorWarn    = "#f59e0b"
	colorError   = "#ef4444"
	colorMuted   = "#94a3b8"
	colorCurrent = "#818cf8"
)

// Printer writes colored lines. Colors are dropped when w is not a terminal.
type Printer struct {
	w   io.Writer
	out *termenv.Output
}

// NewPrinter creates a printer over w.
func NewPrinter(w io.Writer, opts ...termenv.OutputOption) *Printer {
	return &Printer{w: w, out: termenv.NewOutput(w, opts...)}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

func (p *Printer) style(color, format string, args ...any) termenv.Style {
	return p.out.String(fmt.Sprintf(format, args...)).Foreground(p.out.Color(color))
}

// Success prints a line prefixed with a check mark.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(colorOK, "✔ "+format, args...))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(colorWarn, "! "+format, args...))
}

// Error prints an error line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(colorError, "✘ "+format, args...))
}

// Muted prints a de-emphasized line.
func (p *Printer) Muted(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(colorMuted, format, args...))
}

// Plain prints a line without styling.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Step prints a step name, highlighting the current one.
func (p *Printer) Step(name string, current bool) {
	if current {
		fmt.Fprintln(p.w, p.style(colorCurrent, "● %s", name).Bold())
		return
	}
	fmt.Fprintln(p.w, p.style(colorMuted, "○ %s", name))
}
