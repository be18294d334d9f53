package output

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SchemeFor returns the color scheme for writing to w in the given mode.
func SchemeFor(mode ColorMode, w io.Writer) *ColorScheme {
	switch mode {
	case ColorAlways:
		return ForcedColorScheme()
	case ColorNever:
		return NoColorScheme()
	default:
		if isTerminal(w) {
			return ForcedColorScheme()
		}
		return NoColorScheme()
	}
}
