// Package ui holds the terminal styles shared by the CLI and the init wizard.
package ui

import (
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/certwatch-app/certcheck/internal/result"
)

// Theme colors
var (
	colorPrimary   = lipgloss.Color("#0EA5E9") // Sky blue
	colorSuccess   = lipgloss.Color("#22C55E") // Green
	colorWarning   = lipgloss.Color("#F59E0B") // Amber
	colorError     = lipgloss.Color("#EF4444") // Red
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorHighlight = lipgloss.Color("#A855F7") // Purple
	colorDark      = lipgloss.Color("#1F2937") // Dark gray
	colorLight     = lipgloss.Color("#F9FAFB") // Light gray
)

// Component styles
var (
	// TitleStyle for section headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	// SuccessStyle for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	// ErrorStyle for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	// WarningStyle for warning messages
	WarningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	// MutedStyle for secondary text
	MutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// CodeStyle for command/code display
	CodeStyle = lipgloss.NewStyle().
			Background(colorDark).
			Foreground(colorLight).
			Padding(0, 1)

	// BoxStyle for summary sections
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2).
			MarginTop(1)

	// SectionStyle for section dividers
	SectionStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1).
			MarginBottom(1)
)

// Prefixes for messages
const (
	SuccessPrefix = "✓ "
	ErrorPrefix   = "✗ "
	WarningPrefix = "! "
	InfoPrefix    = "→ "
)

// CreateTheme returns the huh theme used by the init wizard
func CreateTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(colorPrimary)
	t.Focused.Description = t.Focused.Description.Foreground(colorMuted)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(colorHighlight)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(colorPrimary)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(colorPrimary)

	t.Blurred.Title = t.Blurred.Title.Foreground(colorMuted)

	return t
}

// StateStyle returns the style used to print a certificate state
func StateStyle(s result.State) lipgloss.Style {
	switch s {
	case result.StateOK:
		return SuccessStyle
	case result.StateWarning:
		return WarningStyle.Bold(true)
	case result.StateExpired:
		return ErrorStyle
	case result.StateUnknown:
		return MutedStyle.Bold(true)
	}
	return MutedStyle
}

// RenderResult renders a check result as "<icon> <sentence>" with the icon
// coloured by state.
func RenderResult(r result.CheckResult) string {
	return StateStyle(r.State).Render(r.State.Icon(false)) + " " + r.Sentence()
}

// RenderHeader renders a banner with the given title
func RenderHeader(title string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(colorLight).
		Background(colorPrimary).
		Padding(0, 2).
		Render(" " + title + " ")
}

// RenderSection renders a section divider.
func RenderSection(title string) string {
	width := 40 - len(title)
	if width < 3 {
		width = 3
	}
	return SectionStyle.Render("─── " + title + " " + strings.Repeat("─", width))
}

// RenderSuccess renders a success message.
func RenderSuccess(msg string) string {
	return SuccessStyle.Render(SuccessPrefix + msg)
}

// RenderError renders an error message.
func RenderError(msg string) string {
	return ErrorStyle.Render(ErrorPrefix + msg)
}

// RenderWarning renders a warning message.
func RenderWarning(msg string) string {
	return WarningStyle.Render(WarningPrefix + msg)
}

// RenderInfo renders an info message.
func RenderInfo(msg string) string {
	return MutedStyle.Render(InfoPrefix + msg)
}

// RenderCode renders a code/command.
func RenderCode(code string) string {
	return CodeStyle.Render(code)
}
