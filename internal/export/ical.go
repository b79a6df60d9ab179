package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/julianstephens/vocealarm/internal/models"
)

const productID = "-//vocealarm//EN"

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// ICal renders the alarm collection as a VCALENDAR, one VEVENT per
// alarm. Recurring alarms carry a weekly RRULE; disabled alarms are
// exported with STATUS:CANCELLED so round-tripping keeps them visible.
func ICal(alarms []models.Alarm) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, alarm := range alarms {
		event, err := alarmEvent(alarm)
		if err != nil {
			return nil, err
		}
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func alarmEvent(alarm models.Alarm) (*ical.Event, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", alarm.Date+" "+alarm.Time, time.Local)
	if err != nil {
		return nil, fmt.Errorf("alarm %s has invalid schedule: %w", alarm.ID, err)
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, alarm.ID)
	event.Props.SetDateTime(ical.PropDateTimeStamp, alarm.CreatedAt.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start)
	event.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(time.Minute))

	summary := alarm.Label
	if summary == "" {
		summary = "Alarm " + alarm.Time
	}
	event.Props.SetText(ical.PropSummary, summary)
	if alarm.Severity != "" {
		event.Props.SetText(ical.PropCategories, string(alarm.Severity))
	}

	if !alarm.IsEnabled {
		event.Props.SetText(ical.PropStatus, "CANCELLED")
	}
	if alarm.VoiceRecording != nil {
		event.Props.SetText(ical.PropDescription,
			fmt.Sprintf("Voice message (%.1fs)", alarm.VoiceRecording.DurationSec))
	}

	// VALARM firing at the event start, so consumers that honor
	// alarms ring at the same moment the daemon would.
	reminder := ical.NewComponent(ical.CompAlarm)
	reminder.Props.SetText(ical.PropAction, "AUDIO")
	reminder.Props.SetText(ical.PropTrigger, "PT0S")
	event.Component.Children = append(event.Component.Children, reminder)

	if alarm.IsRecurring() {
		byday := make([]rrule.Weekday, 0, len(alarm.RepeatDays))
		for _, wd := range alarm.RepeatDays {
			byday = append(byday, rruleWeekdays[wd])
		}
		event.Props.SetRecurrenceRule(&rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: byday,
			Dtstart:   start.UTC(),
		})
	}

	return event, nil
}
