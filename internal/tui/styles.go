package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles binds the palette to one renderer so plain output stays plain.
type styles struct {
	header  lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	errText lipgloss.Style
	box     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:  r.NewStyle().Bold(true).Foreground(ColorPrimary),
		label:   r.NewStyle().Foreground(ColorText).Bold(true),
		muted:   r.NewStyle().Foreground(ColorMuted),
		success: r.NewStyle().Foreground(ColorSuccess),
		warning: r.NewStyle().Foreground(ColorWarning),
		errText: r.NewStyle().Foreground(ColorError).Bold(true),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(0, 1),
	}
}

const logoASCII = `
             _          _ _       _
__   _____ (_) ___ ___| (_)_ __ | | __
\ \ / / _ \| |/ __/ _ \ | | '_ \| |/ /
 \ V / (_) | | (_|  __/ | | | | |   <
  \_/ \___/|_|\___\___|_|_|_| |_|_|\_\`

// Logo returns the voicelink ASCII art
func Logo() string {
	return newStyles(lipgloss.DefaultRenderer()).header.MarginBottom(1).Render(strings.Trim(logoASCII, "\n"))
}
