package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the server start banner.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	name := termenv.String("runcondition").Foreground(p.Color("#818cf8")).Bold()
	ver := termenv.String(version).Foreground(p.Color("#c084fc"))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", name, ver)
	fmt.Fprintln(w, termenv.String("  build cause conditions").Faint())
	fmt.Fprintln(w)
}

// Verdict renders a decision as RUN or SKIP, coloured when colour is enabled.
func Verdict(result bool, color bool) string {
	label, hex := "SKIP", "#fb7185"
	if result {
		label, hex = "RUN", "#4ade80"
	}
	if !color {
		return label
	}
	p := termenv.ColorProfile()
	return termenv.String(label).Foreground(p.Color(hex)).Bold().String()
}
