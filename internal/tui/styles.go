package tui

import (
	"charm.land/lipgloss/v2"

	"github.com/xonecas/atfind/internal/preview"
)

type styles struct {
	Prompt  lipgloss.Style
	Text    lipgloss.Style
	Cursor  lipgloss.Style
	Mention lipgloss.Style
	Status  lipgloss.Style
	Error   lipgloss.Style
}

func newStyles(p preview.Palette) styles {
	return styles{
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)).Bold(true),
		Text:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Fg)),
		Cursor:  lipgloss.NewStyle().Reverse(true),
		Mention: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)),
		Status:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#e06c75")),
	}
}
