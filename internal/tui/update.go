package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/vocealarm/internal/tui/components/alarmlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.alarmList.SetSize(msg.Width-4, msg.Height-6)
		m.ringingModel.SetSize(msg.Width, msg.Height-4)

	case tickMsg:
		return m.updateRingingState(), tick()

	case alarmlist.AddAlarmMsg:
		m.alarmForm = &AlarmFormModel{Severity: "medium", Enabled: true}
		m.form = newAlarmForm(m.alarmForm)
		m.state = StateAddAlarm
		return m, m.form.Init()

	case alarmlist.ToggleAlarmMsg:
		if _, err := m.store.ToggleAlarm(msg.ID); err != nil {
			m.statusMessage = fmt.Sprintf("toggle failed: %v", err)
		} else {
			m.statusMessage = ""
		}
		m.refreshAlarms()
		return m, nil

	case alarmlist.DeleteAlarmMsg:
		m.alarmToDeleteID = msg.ID
		m.state = StateConfirmDelete
		return m, nil

	case alarmlist.DuplicateAlarmMsg:
		if _, err := m.store.DuplicateAlarm(msg.ID); err != nil {
			m.statusMessage = fmt.Sprintf("duplicate failed: %v", err)
		} else {
			m.statusMessage = ""
		}
		m.refreshAlarms()
		return m, nil
	}

	switch m.state {
	case StateAlarms:
		return m.updateAlarms(msg)
	case StateRinging:
		return m.updateRinging(msg)
	case StateAddAlarm:
		return m.updateAddAlarm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	return m, nil
}

// updateRingingState reconciles the TUI state with the alarm session. The
// scheduler fires alarms on its own goroutine, so the ringing screen appears
// and disappears based on what the session reports each tick.
func (m Model) updateRingingState() Model {
	id := m.session.ActiveAlarmID()

	if id == "" {
		if m.state == StateRinging {
			m.ringingModel.SetAlarm(nil)
			m.state = StateAlarms
			m.refreshAlarms()
		}
		return m
	}

	if m.state == StateAddAlarm || m.state == StateConfirmDelete {
		// Don't yank the user out of a form; the alarm keeps ringing.
		return m
	}

	alarm, err := m.store.GetAlarm(id)
	if err == nil {
		m.ringingModel.SetAlarm(&alarm)
	}
	m.state = StateRinging
	return m
}

func (m Model) updateAlarms(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.alarmList, cmd = m.alarmList.Update(msg)
	return m, cmd
}

func (m Model) updateRinging(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Stop):
			m.session.Stop()
			m.ringingModel.SetAlarm(nil)
			m.state = StateAlarms
			m.refreshAlarms()
			return m, nil
		case key.Matches(keyMsg, m.keys.Snooze):
			m.session.Snooze()
			m.ringingModel.SetAlarm(nil)
			m.state = StateAlarms
			m.statusMessage = "snoozed"
			return m, nil
		case key.Matches(keyMsg, m.keys.Quit):
			m.session.Stop()
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) updateAddAlarm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.form = nil
		m.alarmForm = nil
		m.state = StateAlarms
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if err := m.submitAlarmForm(); err != nil {
			m.statusMessage = fmt.Sprintf("failed to add alarm: %v", err)
		} else {
			m.statusMessage = ""
		}
		m.form = nil
		m.alarmForm = nil
		m.state = StateAlarms
		m.refreshAlarms()
		return m, nil
	}

	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y", "Y":
			if err := m.store.DeleteAlarm(m.alarmToDeleteID); err != nil {
				m.statusMessage = fmt.Sprintf("delete failed: %v", err)
			} else {
				m.statusMessage = ""
			}
			m.alarmToDeleteID = ""
			m.state = StateAlarms
			m.refreshAlarms()
			return m, nil
		case "n", "N", "esc", "q":
			m.alarmToDeleteID = ""
			m.state = StateAlarms
			return m, nil
		}
	}
	return m, nil
}
