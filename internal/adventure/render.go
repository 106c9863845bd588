package adventure

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Renderer styles game output. The zero value renders plain text.
type Renderer struct {
	art     lipgloss.Style
	text    lipgloss.Style
	prompt  lipgloss.Style
	danger  lipgloss.Style
	victory lipgloss.Style
}

// NewRenderer returns a colour renderer, or a plain one when color is false.
func NewRenderer(color bool) Renderer {
	if !color {
		return Renderer{}
	}
	return Renderer{
		art:     lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		text:    lipgloss.NewStyle().Foreground(lipgloss.Color("#ABB2BF")),
		prompt:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#61AFEF")),
		danger:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E06C75")),
		victory: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#98C379")),
	}
}

// Art renders an ASCII illustration.
func (r Renderer) Art(s string) string { return r.render(r.art, s) }

// Text renders narration.
func (r Renderer) Text(s string) string { return r.render(r.text, s) }

// Prompt renders a question; no trailing newline is added.
func (r Renderer) Prompt(s string) string { return r.render(r.prompt, s) }

// Danger renders losing messages and the game over banner.
func (r Renderer) Danger(s string) string { return r.render(r.danger, s) }

// Victory renders the winning banner.
func (r Renderer) Victory(s string) string { return r.render(r.victory, s) }

func (r Renderer) render(style lipgloss.Style, s string) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return s
	}
	return style.Render(s)
}
