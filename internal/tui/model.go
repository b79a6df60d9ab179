package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/vocealarm/internal/models"
	"github.com/julianstephens/vocealarm/internal/session"
	"github.com/julianstephens/vocealarm/internal/storage"
	"github.com/julianstephens/vocealarm/internal/tui/components/alarmlist"
	"github.com/julianstephens/vocealarm/internal/tui/components/ringing"
	"github.com/julianstephens/vocealarm/internal/validation"
)

type SessionState int

const (
	StateAlarms SessionState = iota
	StateRinging
	StateAddAlarm
	StateConfirmDelete
)

// tickMsg drives the once-a-second poll of the alarm session.
type tickMsg time.Time

type AlarmFormModel struct {
	Time     string
	Date     string
	Label    string
	Weekdays string
	Severity string
	Enabled  bool
}

type Model struct {
	store               storage.Provider
	session             *session.Session
	state               SessionState
	keys                KeyMap
	help                help.Model
	alarmList           alarmlist.Model
	ringingModel        ringing.Model
	form                *huh.Form
	alarmForm           *AlarmFormModel
	quitting            bool
	width               int
	height              int
	alarmToDeleteID     string
	validationWarning   string
	validationConflicts []validation.Conflict
	statusMessage       string
}

func NewModel(store storage.Provider, sess *session.Session) Model {
	alarms, err := store.GetAllAlarms()
	if err != nil {
		alarms = []models.Alarm{}
	}

	m := Model{
		store:        store,
		session:      sess,
		state:        StateAlarms,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		alarmList:    alarmlist.New(alarms, 0, 0),
		ringingModel: ringing.New(),
	}

	m.updateValidationStatus()

	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateAlarms:
		keys = append(keys, m.keys.Add, m.keys.Toggle, m.keys.Delete, m.keys.Duplicate)
	case StateRinging:
		keys = append(keys, m.keys.Stop, m.keys.Snooze)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter}

	var actions []key.Binding
	switch m.state {
	case StateAlarms:
		actions = []key.Binding{m.keys.Add, m.keys.Toggle, m.keys.Delete, m.keys.Duplicate}
	case StateRinging:
		actions = []key.Binding{m.keys.Stop, m.keys.Snooze}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshAlarms reloads the alarm list from the store and re-runs validation.
func (m *Model) refreshAlarms() {
	alarms, err := m.store.GetAllAlarms()
	if err != nil {
		m.statusMessage = fmt.Sprintf("failed to load alarms: %v", err)
		return
	}
	m.alarmList.SetAlarms(alarms)
	m.updateValidationStatus()
}

func (m *Model) updateValidationStatus() {
	alarms, err := m.store.GetAllAlarms()
	if err != nil {
		m.validationWarning = "⚠ Validation unavailable"
		m.validationConflicts = nil
		return
	}

	result := validation.New().ValidateAlarms(alarms)
	m.validationConflicts = result.Conflicts

	if len(result.Conflicts) > 0 {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s)", len(result.Conflicts))
	} else {
		m.validationWarning = ""
	}
}

// newAlarmForm builds the add-alarm form. The form writes into fm; the values
// are parsed into an Alarm only on submit.
func newAlarmForm(fm *AlarmFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Time").
				Description("HH:MM, 24-hour").
				Value(&fm.Time).
				Validate(func(s string) error {
					if _, err := time.Parse("15:04", s); err != nil {
						return fmt.Errorf("invalid time, expected HH:MM")
					}
					return nil
				}),
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD, first occurrence").
				Value(&fm.Date).
				Validate(func(s string) error {
					if _, err := time.Parse("2006-01-02", s); err != nil {
						return fmt.Errorf("invalid date, expected YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Title("Label").
				Value(&fm.Label),
			huh.NewInput().
				Title("Repeat days").
				Description("e.g. mon,wed,fri - leave empty for one-shot").
				Value(&fm.Weekdays).
				Validate(func(s string) error {
					_, err := models.ParseWeekdays(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Severity").
				Options(
					huh.NewOption("Low", string(models.SeverityLow)),
					huh.NewOption("Medium", string(models.SeverityMedium)),
					huh.NewOption("High", string(models.SeverityHigh)),
				).
				Value(&fm.Severity),
			huh.NewConfirm().
				Title("Enabled").
				Value(&fm.Enabled),
		),
	)
}

// submitAlarmForm turns the completed form values into a stored alarm.
func (m *Model) submitAlarmForm() error {
	repeatDays, err := models.ParseWeekdays(m.alarmForm.Weekdays)
	if err != nil {
		return err
	}

	severity, err := models.ParseSeverity(m.alarmForm.Severity)
	if err != nil {
		return err
	}

	alarm := models.Alarm{
		Time:       m.alarmForm.Time,
		Date:       m.alarmForm.Date,
		Label:      m.alarmForm.Label,
		IsEnabled:  m.alarmForm.Enabled,
		RepeatDays: repeatDays,
		Severity:   severity,
	}

	_, err = m.store.AddAlarm(alarm)
	return err
}
