package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"

	"github.com/julianstephens/vocealarm/internal/models"
)

func TestICalEmptyCollection(t *testing.T) {
	data, err := ICal(nil)
	if err != nil {
		t.Fatalf("ICal failed: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "END:VCALENDAR") {
		t.Errorf("Expected a VCALENDAR envelope, got:\n%s", out)
	}
	if strings.Contains(out, "BEGIN:VEVENT") {
		t.Error("Expected no events for an empty collection")
	}
}

func TestICalEvents(t *testing.T) {
	alarms := []models.Alarm{
		{
			ID:        "a1",
			Time:      "07:30",
			Date:      "2026-09-01",
			Label:     "Morning run",
			IsEnabled: true,
			Severity:  models.SeverityHigh,
			CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:         "a2",
			Time:       "22:00",
			Date:       "2026-09-01",
			IsEnabled:  false,
			Severity:   models.SeverityLow,
			RepeatDays: []time.Weekday{time.Monday, time.Friday},
			CreatedAt:  time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC),
			VoiceRecording: &models.VoiceRecording{
				ID: "r1", Audio: []byte{1}, DurationSec: 12.5,
			},
		},
	}

	data, err := ICal(alarms)
	if err != nil {
		t.Fatalf("ICal failed: %v", err)
	}

	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		t.Fatalf("Exported calendar failed to parse: %v", err)
	}

	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	summary, err := events[0].Props.Text(ical.PropSummary)
	if err != nil || summary != "Morning run" {
		t.Errorf("Expected summary %q, got %q (%v)", "Morning run", summary, err)
	}
	uid, _ := events[0].Props.Text(ical.PropUID)
	if uid != "a1" {
		t.Errorf("Expected UID a1, got %s", uid)
	}

	out := string(data)
	if !strings.Contains(out, "RRULE") || !strings.Contains(out, "BYDAY=MO,FR") {
		t.Errorf("Expected a weekly RRULE with BYDAY=MO,FR:\n%s", out)
	}
	if !strings.Contains(out, "STATUS:CANCELLED") {
		t.Error("Expected disabled alarm exported as STATUS:CANCELLED")
	}
	if !strings.Contains(out, "Voice message (12.5s)") {
		t.Error("Expected the recording description")
	}
	if !strings.Contains(out, "BEGIN:VALARM") || !strings.Contains(out, "ACTION:AUDIO") {
		t.Error("Expected each event to carry an audio VALARM")
	}
}

func TestICalFallbackSummary(t *testing.T) {
	data, err := ICal([]models.Alarm{{
		ID: "a1", Time: "06:00", Date: "2026-09-01", IsEnabled: true,
		CreatedAt: time.Now(),
	}})
	if err != nil {
		t.Fatalf("ICal failed: %v", err)
	}
	if !strings.Contains(string(data), "SUMMARY:Alarm 06:00") {
		t.Errorf("Expected fallback summary, got:\n%s", data)
	}
	if strings.Contains(string(data), "CATEGORIES") {
		t.Error("Expected no CATEGORIES property when severity is unset")
	}
}

func TestICalInvalidSchedule(t *testing.T) {
	_, err := ICal([]models.Alarm{{ID: "a1", Time: "bad", Date: "2026-09-01"}})
	if err == nil {
		t.Error("Expected an error for an unparseable schedule")
	}
}
