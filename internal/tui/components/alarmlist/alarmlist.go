package alarmlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/vocealarm/internal/models"
)

type AddAlarmMsg struct{}

type ToggleAlarmMsg struct {
	ID string
}

type DeleteAlarmMsg struct {
	ID string
}

type DuplicateAlarmMsg struct {
	ID string
}

type Item struct {
	Alarm models.Alarm
}

func (i Item) Title() string {
	label := i.Alarm.Label
	if label == "" {
		label = "Alarm " + i.Alarm.Time
	}
	if !i.Alarm.IsEnabled {
		return "💤 " + label + " (off)"
	}
	return label
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s %s | %s | %s",
		i.Alarm.Date, i.Alarm.Time, models.FormatRepeatDays(i.Alarm.RepeatDays), i.Alarm.Severity)
	if i.Alarm.VoiceRecording != nil {
		desc += fmt.Sprintf(" | voice %.1fs", i.Alarm.VoiceRecording.DurationSec)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Alarm.Label + " " + i.Alarm.Time }

type KeyMap struct {
	Add       key.Binding
	Toggle    key.Binding
	Delete    key.Binding
	Duplicate key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Duplicate: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "duplicate"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(alarms []models.Alarm, width, height int) Model {
	items := make([]list.Item, len(alarms))
	for i, a := range alarms {
		items[i] = Item{Alarm: a}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Alarms"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // We handle help globally in the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Delete, keys.Duplicate}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Delete, keys.Duplicate}
	}

	return Model{list: l, keys: keys}
}

func (m *Model) SetAlarms(alarms []models.Alarm) {
	items := make([]list.Item, len(alarms))
	for i, a := range alarms {
		items[i] = Item{Alarm: a}
	}
	m.list.SetItems(items)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddAlarmMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ToggleAlarmMsg{ID: i.Alarm.ID} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteAlarmMsg{ID: i.Alarm.ID} }
			}
		case key.Matches(msg, m.keys.Duplicate):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DuplicateAlarmMsg{ID: i.Alarm.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No alarms yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
