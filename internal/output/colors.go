package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ColorMode selects when console output is colored.
type ColorMode string

const (
	// ColorAuto colors output only when it goes to a terminal
	ColorAuto ColorMode = "auto"
	// ColorAlways forces color
	ColorAlways ColorMode = "always"
	// ColorNever disables color
	ColorNever ColorMode = "never"
)

// ParseColorMode parses a color mode name. The empty string is ColorAuto.
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid color mode '%s', must be one of: auto, always, never", s)
	}
}

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Notice  *color.Color
	Address *color.Color
	Success *color.Color
	Error   *color.Color
	Muted   *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Notice:  color.New(color.FgBlue, color.Bold),
		Address: color.New(color.FgCyan),
		Success: color.New(color.FgGreen, color.Bold),
		Error:   color.New(color.FgRed),
		Muted:   color.New(color.Faint),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	for _, c := range scheme.all() {
		c.DisableColor()
	}
	return scheme
}

// ForcedColorScheme returns a color scheme that colors even when the
// output is not a terminal.
func ForcedColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	for _, c := range scheme.all() {
		c.EnableColor()
	}
	return scheme
}

func (s *ColorScheme) all() []*color.Color {
	return []*color.Color{s.Notice, s.Address, s.Success, s.Error, s.Muted}
}

// SuccessIcon returns a checkmark symbol with appropriate color
func SuccessIcon(scheme *ColorScheme) string {
	return scheme.Success.Sprint("✓")
}

// ErrorIcon returns an X symbol with appropriate color
func ErrorIcon(scheme *ColorScheme) string {
	return scheme.Error.Sprint("✗")
}
