package session

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/vocealarm/internal/audio"
	"github.com/julianstephens/vocealarm/internal/models"
	"github.com/julianstephens/vocealarm/internal/storage"
)

type fakePlayer struct {
	stopped bool
}

func (p *fakePlayer) Stop() { p.stopped = true }

type fakeAudio struct {
	players []*fakePlayer
	lastWAV []byte
	fail    bool
}

func (f *fakeAudio) play(wav []byte) (AudioPlayer, error) {
	if f.fail {
		return nil, errors.New("no output device")
	}
	f.lastWAV = wav
	p := &fakePlayer{}
	f.players = append(f.players, p)
	return p, nil
}

func newTestStore(t *testing.T) storage.Provider {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "vocealarm.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return store
}

func staticNext(date string) NextFunc {
	return func(models.Alarm, time.Time) (string, error) {
		return date, nil
	}
}

func TestStopWithNoActiveAlarmIsNoop(t *testing.T) {
	store := newTestStore(t)
	sess := New(store, (&fakeAudio{}).play, staticNext(""))

	sess.Stop()
	sess.Snooze()

	if sess.IsRinging() {
		t.Error("Expected session to stay idle")
	}
	if id := sess.ActiveAlarmID(); id != "" {
		t.Errorf("Expected no active alarm, got %q", id)
	}
	if _, _, ok := sess.Snoozed(); ok {
		t.Error("Expected no snooze marker after idle snooze")
	}
}

func TestSingleActiveAlarm(t *testing.T) {
	store := newTestStore(t)
	fa := &fakeAudio{}
	sess := New(store, fa.play, staticNext(""))

	first, _ := store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})
	second, _ := store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})

	if err := sess.Activate(first); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if err := sess.Activate(second); !errors.Is(err, ErrAlreadyRinging) {
		t.Errorf("Expected ErrAlreadyRinging for second activation, got %v", err)
	}
	if sess.ActiveAlarmID() != first.ID {
		t.Error("Expected the first alarm to stay active")
	}
	if len(fa.players) != 1 {
		t.Errorf("Expected a single playback, got %d", len(fa.players))
	}
}

func TestStopHaltsAudioAndDisablesOneShot(t *testing.T) {
	store := newTestStore(t)
	fa := &fakeAudio{}
	sess := New(store, fa.play, staticNext(""))

	alarm, _ := store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})

	if err := sess.Activate(alarm); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	sess.Stop()

	if sess.IsRinging() {
		t.Error("Expected session to be idle after stop")
	}
	if !fa.players[0].stopped {
		t.Error("Expected playback to be halted")
	}

	got, err := store.GetAlarm(alarm.ID)
	if err != nil {
		t.Fatalf("GetAlarm failed: %v", err)
	}
	if got.IsEnabled {
		t.Error("Expected one-shot alarm to be disabled after its ring ended")
	}
}

func TestStopAdvancesRecurringAlarm(t *testing.T) {
	store := newTestStore(t)
	fa := &fakeAudio{}
	sess := New(store, fa.play, staticNext("2026-09-08"))

	alarm, _ := store.AddAlarm(models.Alarm{
		Time:       "07:30",
		Date:       "2026-09-01",
		IsEnabled:  true,
		RepeatDays: []time.Weekday{time.Tuesday},
	})

	if err := sess.Activate(alarm); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	sess.Stop()

	got, err := store.GetAlarm(alarm.ID)
	if err != nil {
		t.Fatalf("GetAlarm failed: %v", err)
	}
	if !got.IsEnabled {
		t.Error("Expected recurring alarm to stay enabled")
	}
	if got.Date != "2026-09-08" {
		t.Errorf("Expected date advanced to next occurrence, got %s", got.Date)
	}
}

func TestSnoozeRecordsMarker(t *testing.T) {
	store := newTestStore(t)
	fa := &fakeAudio{}
	sess := New(store, fa.play, staticNext(""))

	alarm, _ := store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})

	if err := sess.Activate(alarm); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	before := time.Now()
	sess.Snooze()

	if sess.IsRinging() {
		t.Error("Expected session idle after snooze")
	}
	if !fa.players[0].stopped {
		t.Error("Expected playback halted on snooze")
	}

	id, until, ok := sess.Snoozed()
	if !ok {
		t.Fatal("Expected a snooze marker")
	}
	if id != alarm.ID {
		t.Errorf("Expected snoozed id %s, got %s", alarm.ID, id)
	}

	wantMin := storage.DefaultSettings().SnoozeMin
	expected := before.Add(time.Duration(wantMin) * time.Minute)
	if until.Before(expected.Add(-time.Second)) || until.After(expected.Add(5*time.Second)) {
		t.Errorf("Expected snooze deadline ~%v, got %v", expected, until)
	}

	// Snooze does not touch the alarm record
	got, _ := store.GetAlarm(alarm.ID)
	if !got.IsEnabled || got.Date != "2026-09-01" {
		t.Errorf("Expected alarm untouched by snooze, got %+v", got)
	}
}

func TestActivatePlaysVoiceRecordingWhenPresent(t *testing.T) {
	store := newTestStore(t)
	fa := &fakeAudio{}
	sess := New(store, fa.play, staticNext(""))

	voice := audio.EncodeWAV(audio.DefaultFormat, make([]byte, 512))
	alarm, _ := store.AddAlarm(models.Alarm{
		Time: "07:30", Date: "2026-09-01", IsEnabled: true,
		VoiceRecording: &models.VoiceRecording{ID: "r", Audio: voice, DurationSec: 0.01},
	})

	if err := sess.Activate(alarm); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if !bytes.Equal(fa.lastWAV, voice) {
		t.Error("Expected the alarm's voice recording to be played")
	}
	sess.Stop()

	// Without a recording the built-in tone is used
	plain, _ := store.AddAlarm(models.Alarm{Time: "07:31", Date: "2026-09-01", IsEnabled: true})
	if err := sess.Activate(plain); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if !bytes.Equal(fa.lastWAV, audio.DefaultAlarmTone()) {
		t.Error("Expected the default tone for an alarm without a recording")
	}
}

func TestPlaybackFailureDoesNotPreventRinging(t *testing.T) {
	store := newTestStore(t)
	sess := New(store, (&fakeAudio{fail: true}).play, staticNext(""))

	alarm, _ := store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})

	if err := sess.Activate(alarm); err != nil {
		t.Fatalf("Expected activation to survive playback failure, got %v", err)
	}
	if !sess.IsRinging() {
		t.Error("Expected session to be ringing despite playback failure")
	}
	sess.Stop()
}

func TestStopAfterAlarmDeleted(t *testing.T) {
	store := newTestStore(t)
	fa := &fakeAudio{}
	sess := New(store, fa.play, staticNext(""))

	alarm, _ := store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})

	if err := sess.Activate(alarm); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if err := store.DeleteAlarm(alarm.ID); err != nil {
		t.Fatalf("DeleteAlarm failed: %v", err)
	}

	// The ring finalization must tolerate the record being gone
	sess.Stop()

	if sess.IsRinging() {
		t.Error("Expected session idle after stop")
	}
}
