package scheduler

import (
	"testing"
	"time"

	"github.com/julianstephens/vocealarm/internal/models"
)

func localTime(t *testing.T, stamp string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", stamp, time.Local)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", stamp, err)
	}
	return ts
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		days     []time.Weekday
		after    string
		expected string
	}{
		{
			name:     "weekly same day",
			date:     "2026-09-01", // Tuesday
			days:     []time.Weekday{time.Tuesday},
			after:    "2026-09-01 07:30:03",
			expected: "2026-09-08",
		},
		{
			name:     "nearest of several days",
			date:     "2026-09-01",
			days:     []time.Weekday{time.Monday, time.Friday},
			after:    "2026-09-01 08:00:00",
			expected: "2026-09-04", // Friday comes before next Monday
		},
		{
			name:     "wraps across the weekend",
			date:     "2026-09-04", // Friday
			days:     []time.Weekday{time.Monday, time.Friday},
			after:    "2026-09-04 08:00:00",
			expected: "2026-09-07",
		},
		{
			name:     "same day later this week",
			date:     "2026-09-01",
			days:     []time.Weekday{time.Wednesday},
			after:    "2026-09-01 08:00:00",
			expected: "2026-09-02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alarm := models.Alarm{
				ID:         "a1",
				Time:       "07:30",
				Date:       tt.date,
				RepeatDays: tt.days,
			}
			got, err := NextOccurrence(alarm, localTime(t, tt.after))
			if err != nil {
				t.Fatalf("NextOccurrence failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestNextOccurrenceNonRecurring(t *testing.T) {
	alarm := models.Alarm{ID: "a1", Time: "07:30", Date: "2026-09-01"}
	got, err := NextOccurrence(alarm, localTime(t, "2026-09-01 07:30:03"))
	if err != nil {
		t.Fatalf("NextOccurrence failed: %v", err)
	}
	if got != "2026-09-01" {
		t.Errorf("Expected one-shot alarm to keep its date, got %s", got)
	}
}

func TestNextOccurrenceInvalidSchedule(t *testing.T) {
	alarm := models.Alarm{
		ID:         "a1",
		Time:       "seven thirty",
		Date:       "2026-09-01",
		RepeatDays: []time.Weekday{time.Monday},
	}
	if _, err := NextOccurrence(alarm, time.Now()); err == nil {
		t.Error("Expected an error for an unparseable schedule")
	}
}
