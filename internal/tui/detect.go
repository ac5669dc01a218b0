package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode selects between decorated and plain output.
type Mode int

const (
	// ModePlain is used for pipelines, CI logs and redirected output.
	ModePlain Mode = iota
	// ModeStyled is used when a human is watching the terminal.
	ModeStyled
)

// DetectMode reports ModePlain when PGBULK_PLAIN=1, CI or NO_COLOR is set, or
// when f is not a terminal.
func DetectMode(f *os.File) Mode {
	if os.Getenv("PGBULK_PLAIN") == "1" {
		return ModePlain
	}
	if os.Getenv("CI") != "" {
		return ModePlain
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return ModePlain
	}
	return ModeStyled
}

// IsStyled reports whether output to f should be decorated.
func IsStyled(f *os.File) bool {
	return DetectMode(f) == ModeStyled
}
