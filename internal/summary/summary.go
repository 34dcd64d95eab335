// Package summary prints the one-line result banners the CLI commands end
// with, colorized the way the teacher's own build/launch summaries are
// (green for a clean run, yellow for partial, red for failure).
package summary

import "github.com/fatih/color"

var (
	ok   = color.New(color.FgGreen)
	warn = color.New(color.FgYellow)
	bad  = color.New(color.FgRed)
)

// Print writes msg in green, yellow, or red depending on whether failed/total
// indicate a clean, partial, or total failure run.
func Print(msg string, failed, total int) {
	switch {
	case failed == 0:
		ok.Println(msg)
	case failed < total:
		warn.Println(msg)
	default:
		bad.Println(msg)
	}
}
