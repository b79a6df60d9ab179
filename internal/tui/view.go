package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateAlarms:
		content = docStyle.Render(m.alarmList.View())
	case StateRinging:
		content = m.ringingModel.View()
	case StateAddAlarm:
		content = m.form.View()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("vocealarm"),
		content,
		m.viewStatusLine(),
		m.help.View(m),
	)
}

func (m Model) viewStatusLine() string {
	if m.validationWarning != "" {
		return warningStyle.Render(m.validationWarning)
	}
	if m.statusMessage != "" {
		return statusStyle.Render(m.statusMessage)
	}
	return ""
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Are you sure you want to delete this alarm?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
