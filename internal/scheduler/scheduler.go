package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/vocealarm/internal/logger"
	"github.com/julianstephens/vocealarm/internal/models"
	"github.com/julianstephens/vocealarm/internal/session"
	"github.com/julianstephens/vocealarm/internal/storage"
)

// DefaultPollInterval is how often the trigger loop compares wall-clock
// time against the alarm collection.
const DefaultPollInterval = 10 * time.Second

// Scheduler is the polling trigger loop: at each tick it evaluates whether
// any enabled alarm's scheduled minute matches the current one and hands a
// match to the session. Matching is minute-granular; a missed tick (system
// asleep through the scheduled minute) skips the alarm with no backfill.
type Scheduler struct {
	store    storage.Provider
	session  *session.Session
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(store storage.Provider, sess *session.Session, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Scheduler{
		store:    store,
		session:  sess,
		interval: interval,
		now:      time.Now,
	}
}

// Start launches the repeating evaluation task. The loop stops when ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return fmt.Errorf("scheduler already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()

	return nil
}

// Stop cancels the loop and waits for the in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// tick runs one evaluation pass.
func (s *Scheduler) tick() {
	// While an alarm is ringing nothing else may fire
	if s.session.IsRinging() {
		return
	}

	now := s.now()

	// A lapsed snooze takes priority over the regular time match
	if id, until, ok := s.session.Snoozed(); ok && !now.Before(until) {
		alarm, err := s.store.GetAlarm(id)
		if err != nil {
			// Snoozed alarm vanished; drop the marker
			if !errors.Is(err, storage.ErrNotFound) {
				logger.Error("failed to load snoozed alarm", "alarm", id, "error", err)
			}
			s.session.ClearSnooze()
			return
		}
		if !alarm.IsEnabled {
			// Disabled during the snooze window; drop the marker
			s.session.ClearSnooze()
			return
		}
		s.fire(alarm, now)
		return
	}

	currentTime := now.Format("15:04")
	today := now.Format("2006-01-02")

	alarms, err := s.store.GetAllAlarms()
	if err != nil {
		logger.Error("failed to list alarms", "error", err)
		return
	}

	for _, alarm := range alarms {
		if !alarm.IsEnabled || alarm.Date != today || alarm.Time != currentTime {
			continue
		}
		if firedThisMinute(alarm, now) {
			continue
		}

		// Re-fetch by id: a delete or toggle racing this tick must not
		// ring a stale record.
		fresh, err := s.store.GetAlarm(alarm.ID)
		if err != nil || !fresh.IsEnabled {
			continue
		}

		// First match in repository order wins
		s.fire(fresh, now)
		return
	}
}

// fire records the trigger and hands the alarm to the session.
func (s *Scheduler) fire(alarm models.Alarm, now time.Time) {
	alarm.LastTriggered = &now
	if err := s.store.UpdateAlarm(alarm); err != nil {
		logger.Error("failed to record alarm trigger", "alarm", alarm.ID, "error", err)
	}

	if err := s.session.Activate(alarm); err != nil {
		logger.Error("failed to activate alarm", "alarm", alarm.ID, "error", err)
	}
}

func firedThisMinute(alarm models.Alarm, now time.Time) bool {
	return alarm.LastTriggered != nil &&
		alarm.LastTriggered.Truncate(time.Minute).Equal(now.Truncate(time.Minute))
}
