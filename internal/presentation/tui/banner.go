package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the stepwise banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	// Gradient from indigo to rose.
	lines := []struct{ text, color string }{
		{"     _                       _          ", "#818cf8"},
		{" ___| |_ ___ _ ____      __ (_)___  ___ ", "#a78bfa"},
		{"/ __| __/ _ \\ '_ \\ \\ /\\ / / | / __|/ _ \\", "#c084fc"},
		{"\\__ \\ ||  __/ |_) \\ V  V /  | \\__ \\  __/", "#e879f9"},
		{"|___/\\__\\___| .__/ \\_/\\_/   |_|___/\\___|", "#f472b6"},
		{"            |_|                         ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
