package errors

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	fileStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Format returns a multi-line rendering of the error for terminal display.
// The wrapped cause is only shown when debug is true.
func (e *RouteError) Format(debug bool) string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(codeStyle.Render("ERROR " + e.Code + ":"))
	} else {
		b.WriteString(codeStyle.Render("ERROR:"))
	}
	b.WriteString(" ")
	b.WriteString(messageStyle.Render(e.Message))
	b.WriteString("\n\n")

	if e.File != "" {
		b.WriteString("  ")
		b.WriteString(fileStyle.Render(e.File))
		b.WriteString("\n\n")
	}

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if e.Wrapped != nil {
		b.WriteString("  ")
		if debug {
			b.WriteString(dimStyle.Render("Cause: "))
			b.WriteString(e.Wrapped.Error())
		} else {
			b.WriteString(dimStyle.Render(DebugHint))
		}
		b.WriteString("\n\n")
	}

	if e.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(hintStyle.Render("Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCompact returns a single-line error format without styling.
func (e *RouteError) FormatCompact(debug bool) string {
	var b strings.Builder

	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.File != "" {
		b.WriteString(": ")
		b.WriteString(e.File)
	}
	if e.Wrapped != nil {
		b.WriteString(". ")
		if debug {
			b.WriteString("Error: ")
			b.WriteString(e.Wrapped.Error())
		} else {
			b.WriteString(DebugHint)
		}
	}

	return b.String()
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder

	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return lines
}
