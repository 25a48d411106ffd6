package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsWriterTTY reports whether w is a terminal file
func IsWriterTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && IsTTY(f.Fd())
}

// GetTerminalWidth returns the terminal width, or 80 if not a TTY
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 40 {
		return 80
	}
	return width
}

// IsColorEnabled returns true if color output should be enabled for w
func IsColorEnabled(w io.Writer) bool {
	// Check NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	return IsWriterTTY(w)
}
