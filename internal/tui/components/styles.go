package components

import "github.com/charmbracelet/lipgloss"

// Styles holds the shared Lipgloss styles used by the progress view and
// the plain CLI summaries.
type Styles struct {
	Title         lipgloss.Style
	Body          lipgloss.Style
	Muted         lipgloss.Style
	Success       lipgloss.Style
	Error         lipgloss.Style
	Warning       lipgloss.Style
	Footer        lipgloss.Style
	StatusDone    string
	StatusRunning string
	StatusPending string
	StatusSkipped string
	StatusFailed  string
	AccentColor   lipgloss.AdaptiveColor
	ProgressFull  lipgloss.Style
	ProgressEmpty lipgloss.Style
}

// DefaultStyles returns a Styles populated with the rigup color palette.
// Uses AdaptiveColor to work in both light and dark terminals.
func DefaultStyles() Styles {
	accent := lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	muted := lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	success := lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}
	errColor := lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
	warn := lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Body: lipgloss.NewStyle(),

		Muted: lipgloss.NewStyle().
			Foreground(muted),

		Success: lipgloss.NewStyle().
			Foreground(success),

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(errColor),

		Warning: lipgloss.NewStyle().
			Foreground(warn),

		Footer: lipgloss.NewStyle().
			Foreground(muted),

		StatusDone:    "✓",
		StatusRunning: "●",
		StatusPending: "○",
		StatusSkipped: "~",
		StatusFailed:  "✗",

		AccentColor: accent,

		ProgressFull: lipgloss.NewStyle().
			Foreground(accent),

		ProgressEmpty: lipgloss.NewStyle().
			Foreground(muted),
	}
}
