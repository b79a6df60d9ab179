package scheduler

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/julianstephens/vocealarm/internal/models"
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// NextOccurrence computes the next date (YYYY-MM-DD) a recurring alarm
// fires after the given instant, expanding the weekday set as a weekly
// recurrence rule. Non-recurring alarms keep their date unchanged.
func NextOccurrence(alarm models.Alarm, after time.Time) (string, error) {
	if !alarm.IsRecurring() {
		return alarm.Date, nil
	}

	start, err := alarmStart(alarm)
	if err != nil {
		return "", err
	}

	byday := make([]rrule.Weekday, 0, len(alarm.RepeatDays))
	for _, wd := range alarm.RepeatDays {
		byday = append(byday, rruleWeekdays[wd])
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: byday,
		Dtstart:   start,
	})
	if err != nil {
		return "", fmt.Errorf("invalid recurrence for alarm %s: %w", alarm.ID, err)
	}

	next := rule.After(after, false)
	if next.IsZero() {
		return "", fmt.Errorf("no next occurrence for alarm %s", alarm.ID)
	}
	return next.Format("2006-01-02"), nil
}

// alarmStart combines an alarm's date and time-of-day into a local instant.
func alarmStart(alarm models.Alarm) (time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", alarm.Date+" "+alarm.Time, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("alarm %s has invalid schedule: %w", alarm.ID, err)
	}
	return start, nil
}
