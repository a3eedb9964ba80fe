package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is a form drawn over the main view: sign in or write a review.
// Update reports true once the form should close. fail shows the server's
// rejection inside the form so the user can correct and resubmit.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
	focusCmd() tea.Cmd
	fail(reason string)
}

// openModal shows d and focuses its first field.
func (m *Model) openModal(d Modal) tea.Cmd {
	m.modal = d
	return d.focusCmd()
}

// placeModal centers content in a bordered box.
func placeModal(theme Theme, width, height int, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(formWidth).
		Render(content)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
