// Package ui holds the terminal styling shared by the commands.
package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI styles. They are emptied by Disable, so output stays plain when
// redirected or when NO_COLOR is set.
var (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stdout.Fd()) {
		Disable()
	}
}

// Disable turns every style into the empty string
func Disable() {
	for _, c := range []*string{&ColorReset, &ColorBold, &ColorDim, &ColorCyan, &ColorGreen, &ColorYellow, &ColorWhite, &ColorRed} {
		*c = ""
	}
}

func style(s string, codes ...string) string {
	if ColorReset == "" {
		return s
	}
	var prefix string
	for _, c := range codes {
		prefix += c
	}
	return prefix + s + ColorReset
}

func Bold(s string) string    { return style(s, ColorBold) }
func Success(s string) string { return style(s, ColorGreen) }
func Info(s string) string    { return style(s, ColorDim, ColorYellow) }
func Error(s string) string   { return style(s, ColorRed) }
