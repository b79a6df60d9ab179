package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/vocealarm/internal/audio"
	"github.com/julianstephens/vocealarm/internal/logger"
	"github.com/julianstephens/vocealarm/internal/models"
	"github.com/julianstephens/vocealarm/internal/storage"
)

// AudioPlayer is the control handle for an in-flight looping playback.
type AudioPlayer interface {
	Stop()
}

// PlayFunc starts looping playback of WAV data. audio.PlayLoop satisfies
// this; tests inject fakes.
type PlayFunc func(wav []byte) (AudioPlayer, error)

// NextFunc computes the next occurrence date (YYYY-MM-DD) for a recurring
// alarm after the given instant.
type NextFunc func(alarm models.Alarm, after time.Time) (string, error)

// ErrAlreadyRinging is returned when Activate is called while another alarm
// is ringing. At most one alarm may be active at any instant.
var ErrAlreadyRinging = errors.New("an alarm is already ringing")

// Session owns the single "currently ringing" alarm state machine:
// Idle -> Ringing -> Idle via Stop or Snooze.
type Session struct {
	store storage.Provider
	play  PlayFunc
	next  NextFunc
	now   func() time.Time

	mu             sync.Mutex
	activeAlarmID  string
	player         AudioPlayer
	snoozedAlarmID string
	snoozedUntil   time.Time
}

func New(store storage.Provider, play PlayFunc, next NextFunc) *Session {
	return &Session{
		store: store,
		play:  play,
		next:  next,
		now:   time.Now,
	}
}

// Activate transitions the session to Ringing for the given alarm and
// begins looping playback: the alarm's voice recording when present,
// otherwise the built-in tone. Playback failure is logged and does not
// prevent the alarm from becoming active.
func (s *Session) Activate(alarm models.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeAlarmID != "" {
		return fmt.Errorf("%w: %s", ErrAlreadyRinging, s.activeAlarmID)
	}

	sound := audio.DefaultAlarmTone()
	if alarm.VoiceRecording != nil && len(alarm.VoiceRecording.Audio) > 0 {
		sound = alarm.VoiceRecording.Audio
	}

	player, err := s.play(sound)
	if err != nil {
		logger.Error("alarm playback failed", "alarm", alarm.ID, "error", err)
		player = nil
	}

	s.activeAlarmID = alarm.ID
	s.player = player
	if s.snoozedAlarmID == alarm.ID {
		s.snoozedAlarmID = ""
		s.snoozedUntil = time.Time{}
	}

	logger.Info("alarm ringing", "alarm", alarm.ID, "label", alarm.Label)
	return nil
}

// ActiveAlarmID returns the ringing alarm's id, or "" when idle.
func (s *Session) ActiveAlarmID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeAlarmID
}

// IsRinging reports whether an alarm is currently active.
func (s *Session) IsRinging() bool {
	return s.ActiveAlarmID() != ""
}

// Snoozed returns the pending snooze marker, if any.
func (s *Session) Snoozed() (id string, until time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snoozedAlarmID == "" {
		return "", time.Time{}, false
	}
	return s.snoozedAlarmID, s.snoozedUntil, true
}

// ClearSnooze drops the snooze marker, e.g. when the snoozed alarm was
// deleted before its deadline.
func (s *Session) ClearSnooze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snoozedAlarmID = ""
	s.snoozedUntil = time.Time{}
}

// Stop dismisses the ringing alarm: audio halts, the alarm's schedule is
// finalized (recurring alarms advance to their next occurrence, one-shot
// alarms are disabled). A no-op when no alarm is active.
func (s *Session) Stop() {
	s.mu.Lock()
	id := s.activeAlarmID
	player := s.player
	s.activeAlarmID = ""
	s.player = nil
	s.mu.Unlock()

	if id == "" {
		return
	}
	if player != nil {
		player.Stop()
	}

	s.finalize(id)
	logger.Info("alarm stopped", "alarm", id)
}

// Snooze defers the ringing alarm: audio halts and the alarm is marked to
// re-fire after the configured snooze interval. A no-op when no alarm is
// active.
func (s *Session) Snooze() {
	s.mu.Lock()
	id := s.activeAlarmID
	player := s.player
	s.activeAlarmID = ""
	s.player = nil
	s.mu.Unlock()

	if id == "" {
		return
	}
	if player != nil {
		player.Stop()
	}

	snoozeMin := storage.DefaultSettings().SnoozeMin
	if settings, err := s.store.GetSettings(); err == nil && settings.SnoozeMin > 0 {
		snoozeMin = settings.SnoozeMin
	}
	until := s.now().Add(time.Duration(snoozeMin) * time.Minute)

	s.mu.Lock()
	s.snoozedAlarmID = id
	s.snoozedUntil = until
	s.mu.Unlock()

	logger.Info("alarm snoozed", "alarm", id, "until", until.Format(time.RFC3339))
}

// finalize settles an alarm's schedule after its ring ended. The alarm is
// re-fetched by id: a delete racing the ring simply clears the session.
func (s *Session) finalize(id string) {
	alarm, err := s.store.GetAlarm(id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Error("failed to load alarm after ring", "alarm", id, "error", err)
		}
		return
	}

	if alarm.IsRecurring() {
		next, err := s.next(alarm, s.now())
		if err != nil {
			logger.Error("failed to compute next occurrence", "alarm", id, "error", err)
			return
		}
		alarm.Date = next
	} else {
		alarm.IsEnabled = false
	}

	if err := s.store.UpdateAlarm(alarm); err != nil {
		logger.Error("failed to finalize alarm", "alarm", id, "error", err)
	}
}
