package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/vocealarm/internal/constants"
	"github.com/julianstephens/vocealarm/internal/models"
)

type AlarmAddCmd struct {
	Time     string `arg:"" help:"Time of day (HH:MM)."`
	Label    string `short:"l" help:"Display label."`
	Date     string `short:"d" help:"First occurrence date (YYYY-MM-DD, default today or tomorrow)."`
	Weekdays string `short:"w" help:"Comma-separated weekdays for a repeating alarm."`
	Severity string `short:"s" help:"Severity (low|medium|high)." default:"medium"`
	Disabled bool   `help:"Create the alarm disabled."`
}

func (c *AlarmAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	if _, err := time.Parse(constants.TimeFormat, c.Time); err != nil {
		return fmt.Errorf("invalid time %q (expected HH:MM)", c.Time)
	}

	severity, err := parseSeverity(c.Severity)
	if err != nil {
		return err
	}

	var repeatDays []time.Weekday
	if c.Weekdays != "" {
		repeatDays, err = parseWeekdays(c.Weekdays)
		if err != nil {
			return err
		}
	}

	date := c.Date
	if date == "" {
		date = defaultAlarmDate(c.Time, time.Now())
	} else if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}

	alarm, err := ctx.Store.AddAlarm(models.Alarm{
		Time:       c.Time,
		Date:       date,
		Label:      c.Label,
		IsEnabled:  !c.Disabled,
		RepeatDays: repeatDays,
		Severity:   severity,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added alarm for %s %s (ID: %s)\n", alarm.Date, alarm.Time, alarm.ID)
	return nil
}

// defaultAlarmDate picks today if the time of day is still ahead,
// otherwise tomorrow.
func defaultAlarmDate(hhmm string, now time.Time) string {
	if hhmm > now.Format(constants.TimeFormat) {
		return now.Format(constants.DateFormat)
	}
	return now.AddDate(0, 0, 1).Format(constants.DateFormat)
}
