package validation

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/vocealarm/internal/audio"
	"github.com/julianstephens/vocealarm/internal/constants"
	"github.com/julianstephens/vocealarm/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidTime        ConflictType = "invalid_time"
	ConflictInvalidDate        ConflictType = "invalid_date"
	ConflictInvalidWeekday     ConflictType = "invalid_weekday"
	ConflictDuplicateLabel     ConflictType = "duplicate_label"
	ConflictSameMinute         ConflictType = "same_minute"
	ConflictRecordingTooLong   ConflictType = "recording_too_long"
	ConflictRecordingCorrupted ConflictType = "recording_corrupted"
	ConflictStaleDate          ConflictType = "stale_date"
)

// Conflict represents a detected inconsistency in the alarm collection
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // Labels involved
	AlarmIDs    []string // IDs of alarms involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Validator validates alarm records for conflicts
type Validator struct {
	now func() time.Time
}

// New creates a new Validator
func New() *Validator {
	return &Validator{now: time.Now}
}

// ValidateAlarms checks the alarm collection for schedule and payload
// problems. Duplicate labels and same-minute collisions are warnings
// (harmless but usually unintended); the rest indicate records the
// scheduler or player cannot act on.
func (v *Validator) ValidateAlarms(alarms []models.Alarm) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	labelIDs := make(map[string][]string)
	minuteIDs := make(map[string][]string)
	today := v.now().Format(constants.DateFormat)

	for _, alarm := range alarms {
		name := alarmName(alarm)

		timeOK := isValidTimeFormat(alarm.Time)
		if !timeOK {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidTime,
				Description: fmt.Sprintf("Alarm %s has invalid time: %q", name, alarm.Time),
				Items:       []string{name},
				AlarmIDs:    []string{alarm.ID},
			})
		}

		dateOK := true
		if _, err := time.Parse(constants.DateFormat, alarm.Date); err != nil {
			dateOK = false
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("Alarm %s has invalid date: %q", name, alarm.Date),
				Items:       []string{name},
				AlarmIDs:    []string{alarm.ID},
			})
		}

		for _, wd := range alarm.RepeatDays {
			if wd < time.Sunday || wd > time.Saturday {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictInvalidWeekday,
					Description: fmt.Sprintf("Alarm %s has invalid weekday: %d", name, wd),
					Items:       []string{name},
					AlarmIDs:    []string{alarm.ID},
				})
			}
		}

		if rec := alarm.VoiceRecording; rec != nil {
			if rec.DurationSec <= 0 || rec.DurationSec > audio.MaxRecordingDuration.Seconds() {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type: ConflictRecordingTooLong,
					Description: fmt.Sprintf("Alarm %s has a recording of %.1fs (allowed: 0-%.0fs)",
						name, rec.DurationSec, audio.MaxRecordingDuration.Seconds()),
					Items:    []string{name},
					AlarmIDs: []string{alarm.ID},
				})
			}
			if _, _, err := audio.ParseWAV(rec.Audio); err != nil {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictRecordingCorrupted,
					Description: fmt.Sprintf("Alarm %s has an unplayable recording: %v", name, err),
					Items:       []string{name},
					AlarmIDs:    []string{alarm.ID},
				})
			}
		}

		// A one-shot alarm with a past date will never fire again
		if alarm.IsEnabled && !alarm.IsRecurring() && dateOK && alarm.Date < today {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictStaleDate,
				Description: fmt.Sprintf("Alarm %s is enabled but its date %s has passed", name, alarm.Date),
				Items:       []string{name},
				AlarmIDs:    []string{alarm.ID},
			})
		}

		if alarm.Label != "" {
			labelIDs[alarm.Label] = append(labelIDs[alarm.Label], alarm.ID)
		}
		if alarm.IsEnabled && timeOK && dateOK {
			key := alarm.Date + " " + alarm.Time
			minuteIDs[key] = append(minuteIDs[key], alarm.ID)
		}
	}

	// Sorted keys keep the report order stable across runs
	for _, label := range sortedKeys(labelIDs) {
		if ids := labelIDs[label]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateLabel,
				Description: fmt.Sprintf("Duplicate alarm label: %q (IDs: %v)", label, ids),
				Items:       []string{label},
				AlarmIDs:    ids,
			})
		}
	}

	// Two enabled alarms in the same minute: only the first will ring
	for _, key := range sortedKeys(minuteIDs) {
		if ids := minuteIDs[key]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictSameMinute,
				Description: fmt.Sprintf("%d alarms scheduled for %s; only the first will ring", len(ids), key),
				AlarmIDs:    ids,
			})
		}
	}

	return result
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func alarmName(alarm models.Alarm) string {
	if alarm.Label != "" {
		return fmt.Sprintf("%q", alarm.Label)
	}
	return alarm.ID
}

func isValidTimeFormat(timeStr string) bool {
	_, err := time.Parse(constants.TimeFormat, timeStr)
	return err == nil
}
