// Package theme holds the terminal styles of the interactive chat.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Colors is a chat color palette.
type Colors struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Text      lipgloss.Color
	TextMuted lipgloss.Color
	Error     lipgloss.Color
}

// CurrentTheme is the active palette.
var CurrentTheme = Colors{
	Primary:   lipgloss.Color("#00ff00"),
	Secondary: lipgloss.Color("#5fafff"),
	Text:      lipgloss.Color("#ffffff"),
	TextMuted: lipgloss.Color("#808080"),
	Error:     lipgloss.Color("#ff5f5f"),
}

// SetTheme sets the current theme
func SetTheme(colors Colors) {
	CurrentTheme = colors
}

// Styles renders the speakers of a conversation.
type Styles struct {
	User      lipgloss.Style
	Assistant lipgloss.Style
	Body      lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	// Width wraps message bodies; 0 disables wrapping.
	Width int
}

// NewStyles builds Styles from the current theme.
func NewStyles(width int) Styles {
	t := CurrentTheme
	return Styles{
		User:      lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Body:      lipgloss.NewStyle().Foreground(t.Text),
		Muted:     lipgloss.NewStyle().Foreground(t.TextMuted),
		Error:     lipgloss.NewStyle().Foreground(t.Error),
		Width:     width,
	}
}

// UserPrompt is the label printed before user input.
func (s Styles) UserPrompt() string {
	return s.User.Render("You:") + " "
}

// AssistantMessage renders a labeled, wrapped assistant reply. Replies that
// start with "Error:" use the error style.
func (s Styles) AssistantMessage(text string) string {
	label := s.Assistant.Render("Assistant:")
	body := s.Body
	if strings.HasPrefix(text, "Error:") {
		body = s.Error
	}
	return label + "\n" + body.Render(s.wrap(text))
}

// Note renders a muted status line.
func (s Styles) Note(text string) string {
	return s.Muted.Render(s.wrap(text))
}

func (s Styles) wrap(text string) string {
	if s.Width <= 0 {
		return text
	}
	return ansi.Wordwrap(text, s.Width, " -")
}

// Truncate shortens text to width cells with an ellipsis.
func Truncate(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	return ansi.Truncate(text, width, "…")
}
