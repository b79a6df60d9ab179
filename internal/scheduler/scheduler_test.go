package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/julianstephens/vocealarm/internal/models"
	"github.com/julianstephens/vocealarm/internal/session"
	"github.com/julianstephens/vocealarm/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type nopPlayer struct{}

func (nopPlayer) Stop() {}

type countingAudio struct {
	plays int
}

func (c *countingAudio) play([]byte) (session.AudioPlayer, error) {
	c.plays++
	return nopPlayer{}, nil
}

type fixture struct {
	store storage.Provider
	sess  *session.Session
	sched *Scheduler
	audio *countingAudio
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "vocealarm.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	audio := &countingAudio{}
	sess := session.New(store, audio.play, NextOccurrence)
	sched := New(store, sess, DefaultPollInterval)
	return &fixture{store: store, sess: sess, sched: sched, audio: audio}
}

func (f *fixture) tickAt(t *testing.T, stamp string) {
	t.Helper()
	now, err := time.ParseInLocation("2006-01-02 15:04:05", stamp, time.Local)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", stamp, err)
	}
	f.sched.now = func() time.Time { return now }
	f.sched.tick()
}

func TestDisabledAlarmNeverFires(t *testing.T) {
	f := newFixture(t)
	f.store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: false})

	f.tickAt(t, "2026-09-01 07:30:03")

	if f.audio.plays != 0 {
		t.Errorf("Expected no playback for a disabled alarm, got %d", f.audio.plays)
	}
	if f.sess.IsRinging() {
		t.Error("Expected session to stay idle")
	}
}

func TestAlarmFiresOncePerMinute(t *testing.T) {
	f := newFixture(t)
	alarm, _ := f.store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})

	f.tickAt(t, "2026-09-01 07:30:03")

	if !f.sess.IsRinging() || f.sess.ActiveAlarmID() != alarm.ID {
		t.Fatal("Expected the alarm to be ringing after the first tick in its minute")
	}
	if f.audio.plays != 1 {
		t.Fatalf("Expected one playback, got %d", f.audio.plays)
	}

	got, _ := f.store.GetAlarm(alarm.ID)
	if got.LastTriggered == nil {
		t.Error("Expected the trigger time to be recorded")
	}

	// A later tick in the same minute must not re-activate
	f.tickAt(t, "2026-09-01 07:30:13")
	if f.audio.plays != 1 {
		t.Errorf("Expected no second playback in the same minute, got %d", f.audio.plays)
	}
}

func TestTriggerDedupAfterStop(t *testing.T) {
	f := newFixture(t)
	// Already-fired marker within the matching minute, alarm still enabled
	fired := time.Date(2026, 9, 1, 7, 30, 1, 0, time.Local)
	alarm, _ := f.store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})
	alarm.LastTriggered = &fired
	if err := f.store.UpdateAlarm(alarm); err != nil {
		t.Fatalf("UpdateAlarm failed: %v", err)
	}

	f.tickAt(t, "2026-09-01 07:30:13")

	if f.audio.plays != 0 {
		t.Errorf("Expected no re-trigger within the fired minute, got %d plays", f.audio.plays)
	}
}

func TestRingingAlarmBlocksOthers(t *testing.T) {
	f := newFixture(t)
	first, _ := f.store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})
	f.store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})

	f.tickAt(t, "2026-09-01 07:30:03")
	f.tickAt(t, "2026-09-01 07:30:13")

	if f.audio.plays != 1 {
		t.Errorf("Expected a single active alarm, got %d plays", f.audio.plays)
	}
	if f.sess.ActiveAlarmID() != first.ID {
		t.Error("Expected the earliest-created alarm to win")
	}
}

func TestMissedMinuteIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})

	// The process was asleep through 07:30; no backfill
	f.tickAt(t, "2026-09-01 07:42:00")

	if f.audio.plays != 0 {
		t.Errorf("Expected a missed alarm minute to be skipped, got %d plays", f.audio.plays)
	}
}

func TestSnoozeRefiresAfterDeadline(t *testing.T) {
	f := newFixture(t)
	alarm, _ := f.store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})

	f.tickAt(t, "2026-09-01 07:30:03")
	if !f.sess.IsRinging() {
		t.Fatal("Expected alarm to ring")
	}
	f.sess.Snooze()

	id, until, ok := f.sess.Snoozed()
	if !ok || id != alarm.ID {
		t.Fatalf("Expected snooze marker for %s", alarm.ID)
	}

	// Before the deadline nothing happens
	f.sched.now = func() time.Time { return until.Add(-time.Minute) }
	f.sched.tick()
	if f.audio.plays != 1 {
		t.Fatalf("Expected no re-fire before the snooze deadline, got %d plays", f.audio.plays)
	}

	// Past the deadline the alarm rings again
	f.sched.now = func() time.Time { return until.Add(time.Second) }
	f.sched.tick()
	if f.audio.plays != 2 {
		t.Errorf("Expected a re-fire after the snooze deadline, got %d plays", f.audio.plays)
	}
	if !f.sess.IsRinging() || f.sess.ActiveAlarmID() != alarm.ID {
		t.Error("Expected the snoozed alarm to be ringing again")
	}
	if _, _, ok := f.sess.Snoozed(); ok {
		t.Error("Expected the snooze marker to be consumed")
	}
}

func TestSnoozedAlarmDisabledBeforeDeadline(t *testing.T) {
	f := newFixture(t)
	alarm, _ := f.store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})

	f.tickAt(t, "2026-09-01 07:30:03")
	f.sess.Snooze()
	if _, err := f.store.ToggleAlarm(alarm.ID); err != nil {
		t.Fatalf("ToggleAlarm failed: %v", err)
	}

	_, until, _ := f.sess.Snoozed()
	f.sched.now = func() time.Time { return until.Add(time.Second) }
	f.sched.tick()

	if f.audio.plays != 1 {
		t.Errorf("Expected no re-fire for a disabled alarm, got %d plays", f.audio.plays)
	}
	if f.sess.IsRinging() {
		t.Error("Expected session to stay idle")
	}
	if _, _, ok := f.sess.Snoozed(); ok {
		t.Error("Expected the stale snooze marker to be dropped")
	}
}

func TestSnoozedAlarmDeletedBeforeDeadline(t *testing.T) {
	f := newFixture(t)
	alarm, _ := f.store.AddAlarm(models.Alarm{Time: "07:30", Date: "2026-09-01", IsEnabled: true})

	f.tickAt(t, "2026-09-01 07:30:03")
	f.sess.Snooze()
	if err := f.store.DeleteAlarm(alarm.ID); err != nil {
		t.Fatalf("DeleteAlarm failed: %v", err)
	}

	_, until, _ := f.sess.Snoozed()
	f.sched.now = func() time.Time { return until.Add(time.Second) }
	f.sched.tick()

	if f.audio.plays != 1 {
		t.Errorf("Expected no re-fire for a deleted alarm, got %d plays", f.audio.plays)
	}
	if _, _, ok := f.sess.Snoozed(); ok {
		t.Error("Expected the stale snooze marker to be dropped")
	}
}

func TestRecurringAlarmAdvancesOnStop(t *testing.T) {
	f := newFixture(t)
	// Tuesday 2026-09-01, repeating every Tuesday
	f.store.AddAlarm(models.Alarm{
		Time:       "07:30",
		Date:       "2026-09-01",
		IsEnabled:  true,
		RepeatDays: []time.Weekday{time.Tuesday},
	})

	f.tickAt(t, "2026-09-01 07:30:03")
	if !f.sess.IsRinging() {
		t.Fatal("Expected alarm to ring")
	}
	f.sess.Stop()

	alarms, _ := f.store.GetAllAlarms()
	if len(alarms) != 1 {
		t.Fatalf("Expected one alarm, got %d", len(alarms))
	}
	if !alarms[0].IsEnabled {
		t.Error("Expected recurring alarm to stay enabled")
	}
	if alarms[0].Date != "2026-09-08" {
		t.Errorf("Expected next occurrence 2026-09-08, got %s", alarms[0].Date)
	}
}

func TestStartAndStopLoop(t *testing.T) {
	f := newFixture(t)
	f.sched.interval = 5 * time.Millisecond

	if err := f.sched.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := f.sched.Start(context.Background()); err == nil {
		t.Error("Expected second Start to fail while running")
	}

	time.Sleep(20 * time.Millisecond)
	f.sched.Stop()

	// Stop is idempotent
	f.sched.Stop()
}
