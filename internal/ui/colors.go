// Package ui holds the ANSI styling used by the CLI.
package ui

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

func style(code, s string) string {
	return code + s + ColorReset
}

// Bold renders s in bold.
func Bold(s string) string { return style(ColorBold, s) }

// Dim renders secondary text such as descriptions and hints.
func Dim(s string) string { return style(ColorDim, s) }

// Success marks completed work.
func Success(s string) string { return style(ColorGreen, s) }

// Warn marks partial results, e.g. an interrupted run.
func Warn(s string) string { return style(ColorYellow, s) }

// Error marks failures and invalid records.
func Error(s string) string { return style(ColorRed, s) }
