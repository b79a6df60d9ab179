package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/vocealarm/internal/constants"
)

type AlarmEditCmd struct {
	ID       string `arg:"" help:"Alarm ID."`
	Time     string `short:"t" help:"New time of day (HH:MM)."`
	Date     string `short:"d" help:"New date (YYYY-MM-DD)."`
	Label    string `short:"l" help:"New label."`
	Weekdays string `short:"w" help:"New comma-separated weekdays ('none' clears repeats)."`
	Severity string `short:"s" help:"New severity (low|medium|high)."`
}

func (c *AlarmEditCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	alarm, err := ctx.Store.GetAlarm(c.ID)
	if err != nil {
		return err
	}

	if c.Time != "" {
		if _, err := time.Parse(constants.TimeFormat, c.Time); err != nil {
			return fmt.Errorf("invalid time %q (expected HH:MM)", c.Time)
		}
		alarm.Time = c.Time
	}
	if c.Date != "" {
		if _, err := time.Parse(constants.DateFormat, c.Date); err != nil {
			return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", c.Date)
		}
		alarm.Date = c.Date
	}
	if c.Label != "" {
		alarm.Label = c.Label
	}
	if c.Weekdays != "" {
		if c.Weekdays == "none" {
			alarm.RepeatDays = nil
		} else {
			wds, err := parseWeekdays(c.Weekdays)
			if err != nil {
				return err
			}
			alarm.RepeatDays = wds
		}
	}
	if c.Severity != "" {
		severity, err := parseSeverity(c.Severity)
		if err != nil {
			return err
		}
		alarm.Severity = severity
	}

	if err := ctx.Store.UpdateAlarm(alarm); err != nil {
		return err
	}
	fmt.Printf("Updated alarm %s\n", alarm.ID)
	return nil
}
