package tui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	fg, muted, accent, link, root, border lipgloss.Color
}

var (
	darkPalette = palette{
		fg:     lipgloss.Color("#E2E8F0"),
		muted:  lipgloss.Color("#64748B"),
		accent: lipgloss.Color("#4ADE80"),
		link:   lipgloss.Color("#38BDF8"),
		root:   lipgloss.Color("#F87171"),
		border: lipgloss.Color("#334155"),
	}
	lightPalette = palette{
		fg:     lipgloss.Color("#1E293B"),
		muted:  lipgloss.Color("#94A3B8"),
		accent: lipgloss.Color("#15803D"),
		link:   lipgloss.Color("#0369A1"),
		root:   lipgloss.Color("#B91C1C"),
		border: lipgloss.Color("#CBD5E1"),
	}
)

type styles struct {
	title  lipgloss.Style
	text   lipgloss.Style
	link   lipgloss.Style
	href   lipgloss.Style
	prompt lipgloss.Style
	root   lipgloss.Style
	frame  lipgloss.Style
	help   lipgloss.Style
}

func newStyles(dark bool) styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		text:   lipgloss.NewStyle().Foreground(p.fg),
		link:   lipgloss.NewStyle().Underline(true).Foreground(p.link),
		href:   lipgloss.NewStyle().Foreground(p.muted),
		prompt: lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		root:   lipgloss.NewStyle().Bold(true).Foreground(p.root),
		frame:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1),
		help:   lipgloss.NewStyle().Foreground(p.muted),
	}
}
