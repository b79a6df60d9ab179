package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity parses a user-supplied severity string.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(s)) {
	case SeverityLow:
		return SeverityLow, nil
	case SeverityMedium:
		return SeverityMedium, nil
	case SeverityHigh:
		return SeverityHigh, nil
	default:
		return "", fmt.Errorf("invalid severity: %s (low|medium|high)", s)
	}
}

// VoiceRecording is a captured audio asset attached to exactly one alarm or
// note. Audio is WAV-encoded; encoding/json base64-encodes the bytes so the
// asset survives the JSON store round trip.
type VoiceRecording struct {
	ID          string    `json:"id"`
	Audio       []byte    `json:"audio"`
	DurationSec float64   `json:"duration_sec"`
	CreatedAt   time.Time `json:"created_at"`
}

// Alarm represents a scheduled, possibly recurring wake event
type Alarm struct {
	ID             string          `json:"id"`
	Time           string          `json:"time"` // HH:MM format, local time
	Date           string          `json:"date"` // YYYY-MM-DD format, next occurrence
	Label          string          `json:"label"`
	IsEnabled      bool            `json:"is_enabled"`
	RepeatDays     []time.Weekday  `json:"repeat_days,omitempty"`
	VoiceRecording *VoiceRecording `json:"voice_recording,omitempty"`
	Severity       Severity        `json:"severity,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	LastTriggered  *time.Time      `json:"last_triggered,omitempty"`
}

// IsRecurring reports whether the alarm repeats on a weekday set rather than
// firing once on Date.
func (a Alarm) IsRecurring() bool {
	return len(a.RepeatDays) > 0
}

// RepeatsOn reports whether the alarm recurs on the given weekday.
func (a Alarm) RepeatsOn(wd time.Weekday) bool {
	for _, d := range a.RepeatDays {
		if d == wd {
			return true
		}
	}
	return false
}

var dayNames = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

// ParseWeekdays parses a comma-separated list of weekday names or numbers
// (0=Sunday, 6=Saturday) into a repeat day set.
func ParseWeekdays(s string) ([]time.Weekday, error) {
	var weekdays []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if wd, ok := dayNames[part]; ok {
			weekdays = append(weekdays, wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		weekdays = append(weekdays, time.Weekday(num))
	}
	return weekdays, nil
}

// FormatRepeatDays renders a repeat day set as "Mon,Fri", or "once" for an
// empty set.
func FormatRepeatDays(days []time.Weekday) string {
	if len(days) == 0 {
		return "once"
	}
	names := make([]string, 0, len(days))
	for _, wd := range days {
		names = append(names, wd.String()[:3])
	}
	return strings.Join(names, ",")
}
