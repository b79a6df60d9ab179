package ringing

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/vocealarm/internal/models"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	severityStyles = map[models.Severity]lipgloss.Style{
		models.SeverityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		models.SeverityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.SeverityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

type Model struct {
	Alarm  *models.Alarm
	width  int
	height int
}

func New() Model {
	return Model{}
}

func (m *Model) SetAlarm(alarm *models.Alarm) {
	m.Alarm = alarm
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) View() string {
	if m.Alarm == nil {
		return ""
	}

	label := m.Alarm.Label
	if label == "" {
		label = "Alarm"
	}

	sevStyle, ok := severityStyles[m.Alarm.Severity]
	if !ok {
		sevStyle = severityStyles[models.SeverityMedium]
	}

	var b strings.Builder
	b.WriteString(sevStyle.Render("🔔 RINGING"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render(label))
	b.WriteString("\n")
	b.WriteString(clockStyle.Render(m.Alarm.Time))
	b.WriteString("\n\n")
	if m.Alarm.VoiceRecording != nil {
		b.WriteString(fmt.Sprintf("voice message (%.1fs)\n\n", m.Alarm.VoiceRecording.DurationSec))
	}
	b.WriteString(fmt.Sprintf("now %s\n\n", time.Now().Format("15:04:05")))
	b.WriteString("[s] stop   [z] snooze")

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, strings.Split(b.String(), "\n")...),
	)
}
