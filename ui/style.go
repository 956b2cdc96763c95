package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	Header  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	Failure = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	Muted   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	Bold    = lipgloss.NewStyle().Bold(true)
)

// Truncate shortens s to maxLen characters, ending in "..." when cut.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) > maxLen && maxLen > 3 {
		return string(r[:maxLen-3]) + "..."
	}
	return s
}
