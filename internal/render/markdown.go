// Package render turns assistant output and chat UI accents into styled
// terminal text.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Renderer renders assistant markdown plus the prompt and warning styles used
// by the chat loop.
type Renderer struct {
	markdown *glamour.TermRenderer
	warning  lipgloss.Style
	prompt   lipgloss.Style
}

// New creates a terminal renderer with auto-detected styling.
func New() (*Renderer, error) {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}

	return &Renderer{
		markdown: md,
		warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	}, nil
}

// Assistant renders an assistant reply as markdown, falling back to the raw
// text when rendering fails.
func (r *Renderer) Assistant(content string) string {
	rendered, err := r.markdown.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// Warning styles a user-visible warning line.
func (r *Renderer) Warning(text string) string {
	return r.warning.Render(text)
}

// Prompt styles the input prompt.
func (r *Renderer) Prompt(text string) string {
	return r.prompt.Render(text)
}
