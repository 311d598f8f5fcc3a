package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`        _   _     _                    `, "#818cf8"},
	{`   __ _| |_(_) __| |_ __ __ ___      __`, "#a78bfa"},
	{`  / _' | __| |/ _' | '__/ _' \ \ /\ / /`, "#c084fc"},
	{` | (_| | |_| | (_| | | | (_| |\ V  V / `, "#e879f9"},
	{`  \__,_|\__|_|\__,_|_|  \__,_| \_/\_/  `, "#f472b6"},
}

// PrintBanner writes the atidraw banner and version to w, coloured when w supports it.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)

	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(out.Color(line.color)))
	}
	fmt.Fprintln(w, out.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
