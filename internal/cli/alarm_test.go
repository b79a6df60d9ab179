package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/vocealarm/internal/audio"
	"github.com/julianstephens/vocealarm/internal/models"
)

func TestAlarmAddCmd(t *testing.T) {
	ctx := setupTestContext(t)

	cmd := &AlarmAddCmd{Time: "07:30", Label: "Work", Weekdays: "mon,fri", Severity: "high"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("alarm add failed: %v", err)
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatalf("failed to reload store: %v", err)
	}
	alarms, err := ctx.Store.GetAllAlarms()
	if err != nil {
		t.Fatalf("failed to list alarms: %v", err)
	}
	if len(alarms) != 1 {
		t.Fatalf("expected 1 alarm, got %d", len(alarms))
	}

	alarm := alarms[0]
	if alarm.Time != "07:30" || alarm.Label != "Work" {
		t.Errorf("unexpected alarm: %+v", alarm)
	}
	if alarm.Severity != models.SeverityHigh {
		t.Errorf("expected high severity, got %s", alarm.Severity)
	}
	if !alarm.IsEnabled {
		t.Error("alarm should be enabled by default")
	}
	if len(alarm.RepeatDays) != 2 {
		t.Errorf("expected 2 repeat days, got %v", alarm.RepeatDays)
	}
	if alarm.Date == "" {
		t.Error("expected a default date to be filled in")
	}
}

func TestAlarmAddCmdRejectsInvalidInput(t *testing.T) {
	ctx := setupTestContext(t)

	if err := (&AlarmAddCmd{Time: "25:00", Severity: "medium"}).Run(ctx); err == nil {
		t.Error("expected error for invalid time")
	}
	if err := (&AlarmAddCmd{Time: "07:30", Date: "tomorrow", Severity: "medium"}).Run(ctx); err == nil {
		t.Error("expected error for invalid date")
	}
	if err := (&AlarmAddCmd{Time: "07:30", Severity: "loud"}).Run(ctx); err == nil {
		t.Error("expected error for invalid severity")
	}
}

func TestAlarmToggleCmd(t *testing.T) {
	ctx := setupTestContext(t)

	if err := (&AlarmAddCmd{Time: "07:30", Severity: "medium"}).Run(ctx); err != nil {
		t.Fatalf("alarm add failed: %v", err)
	}
	if err := ctx.Store.Load(); err != nil {
		t.Fatal(err)
	}
	alarms, _ := ctx.Store.GetAllAlarms()

	if err := (&AlarmToggleCmd{ID: alarms[0].ID}).Run(ctx); err != nil {
		t.Fatalf("alarm toggle failed: %v", err)
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatal(err)
	}
	alarm, err := ctx.Store.GetAlarm(alarms[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if alarm.IsEnabled {
		t.Error("alarm should be disabled after toggle")
	}
}

func TestRecordCmdFromFile(t *testing.T) {
	ctx := setupTestContext(t)

	if err := (&AlarmAddCmd{Time: "07:30", Severity: "medium"}).Run(ctx); err != nil {
		t.Fatalf("alarm add failed: %v", err)
	}
	if err := ctx.Store.Load(); err != nil {
		t.Fatal(err)
	}
	alarms, _ := ctx.Store.GetAllAlarms()
	id := alarms[0].ID

	// One second of silence in the default format
	format := audio.DefaultFormat
	pcm := make([]byte, format.ByteRate())
	wavPath := filepath.Join(t.TempDir(), "voice.wav")
	if err := os.WriteFile(wavPath, audio.EncodeWAV(format, pcm), 0644); err != nil {
		t.Fatal(err)
	}

	if err := (&RecordCmd{ID: id, File: wavPath}).Run(ctx); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatal(err)
	}
	alarm, err := ctx.Store.GetAlarm(id)
	if err != nil {
		t.Fatal(err)
	}
	if alarm.VoiceRecording == nil {
		t.Fatal("expected a voice recording on the alarm")
	}
	if d := alarm.VoiceRecording.DurationSec; d < 0.9 || d > 1.1 {
		t.Errorf("expected ~1s duration, got %.2f", d)
	}

	// Clear removes it again
	if err := (&RecordCmd{ID: id, Clear: true}).Run(ctx); err != nil {
		t.Fatalf("record --clear failed: %v", err)
	}
	if err := ctx.Store.Load(); err != nil {
		t.Fatal(err)
	}
	alarm, _ = ctx.Store.GetAlarm(id)
	if alarm.VoiceRecording != nil {
		t.Error("voice recording should have been removed")
	}
}

func TestRecordCmdRejectsOverlongFile(t *testing.T) {
	ctx := setupTestContext(t)

	if err := (&AlarmAddCmd{Time: "07:30", Severity: "medium"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Store.Load(); err != nil {
		t.Fatal(err)
	}
	alarms, _ := ctx.Store.GetAllAlarms()

	format := audio.LowQualityFormat
	secs := int(audio.MaxRecordingDuration/time.Second) + 5
	pcm := make([]byte, secs*format.ByteRate())
	wavPath := filepath.Join(t.TempDir(), "long.wav")
	if err := os.WriteFile(wavPath, audio.EncodeWAV(format, pcm), 0644); err != nil {
		t.Fatal(err)
	}

	if err := (&RecordCmd{ID: alarms[0].ID, File: wavPath}).Run(ctx); err == nil {
		t.Error("expected error for recording over the length ceiling")
	}
}

func TestChatCmdCreatesAlarm(t *testing.T) {
	ctx := setupTestContext(t)

	cmd := &ChatCmd{Message: []string{"wake", "me", "at", "7:30", "am", "for", "the", "gym"}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("chat failed: %v", err)
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatal(err)
	}
	alarms, err := ctx.Store.GetAllAlarms()
	if err != nil {
		t.Fatal(err)
	}
	if len(alarms) != 1 {
		t.Fatalf("expected the chat to create 1 alarm, got %d", len(alarms))
	}
	if alarms[0].Time != "07:30" {
		t.Errorf("expected 07:30, got %s", alarms[0].Time)
	}
}

func TestChatCmdCreatesInboxNote(t *testing.T) {
	ctx := setupTestContext(t)

	cmd := &ChatCmd{Message: []string{"remember", "buy", "more", "coffee"}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("chat failed: %v", err)
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatal(err)
	}
	spaces, err := ctx.Store.GetAllSpaces()
	if err != nil {
		t.Fatal(err)
	}

	var inboxID string
	for _, s := range spaces {
		if s.Name == inboxSpace {
			inboxID = s.ID
		}
	}
	if inboxID == "" {
		t.Fatal("expected an Inbox space to be created")
	}

	notes, err := ctx.Store.GetNotesBySpace(inboxID)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note in the inbox, got %d", len(notes))
	}
}

func TestValidateCmd(t *testing.T) {
	ctx := setupTestContext(t)

	if err := (&AlarmAddCmd{Time: "07:30", Severity: "medium"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&ValidateCmd{}).Run(ctx); err != nil {
		t.Errorf("validate failed: %v", err)
	}
}
