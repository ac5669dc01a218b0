package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary   = lipgloss.Color("39")  // Blue
	ColorSecondary = lipgloss.Color("245") // Gray
	ColorSuccess   = lipgloss.Color("34")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
	ColorMuted     = lipgloss.Color("240") // Dark gray
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Width(10)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

const (
	SymbolCheck = "✓"
	SymbolCross = "✗"
	SymbolArrow = "→"
)

// LoadSummary describes a finished load.
type LoadSummary struct {
	Records  int
	Table    string
	Source   string
	Duration time.Duration
}

// PlainLine is the machine-friendly one-line summary.
func (s LoadSummary) PlainLine() string {
	return fmt.Sprintf("Loaded %d records into %s", s.Records, s.Table)
}

// Render returns the summary as a bordered panel.
func (s LoadSummary) Render() string {
	rows := []string{
		SuccessStyle.Render(SymbolCheck+" ") + TitleStyle.Render(s.PlainLine()),
		"",
		LabelStyle.Render("source") + s.Source,
		LabelStyle.Render("table") + s.Table,
		LabelStyle.Render("records") + fmt.Sprintf("%d", s.Records),
		LabelStyle.Render("elapsed") + MutedStyle.Render(s.Duration.Round(time.Millisecond).String()),
	}
	return BoxStyle.Render(strings.Join(rows, "\n"))
}

// RenderPlan formats a dry-run plan: the COPY command followed by one line
// per column with its encoding.
func RenderPlan(command string, columns [][2]string, styled bool) string {
	var b strings.Builder
	if styled {
		b.WriteString(TitleStyle.Render(command))
	} else {
		b.WriteString(command)
	}
	b.WriteString("\n")
	for _, c := range columns {
		if styled {
			fmt.Fprintf(&b, "  %s %s %s\n", c[0], MutedStyle.Render(SymbolArrow), c[1])
		} else {
			fmt.Fprintf(&b, "  %s -> %s\n", c[0], c[1])
		}
	}
	return b.String()
}
