package storage

import "errors"

// ErrNotFound is returned when an operation references a record id that does
// not exist. Callers holding a stale id (e.g. a scheduler tick racing a
// delete) are expected to treat this as "record gone", not as corruption.
var ErrNotFound = errors.New("record not found")

type Settings struct {
	SoundNotifications   bool `json:"sound_notifications"`
	HighQualityAudio     bool `json:"high_quality_audio"`
	NoiseCancellation    bool `json:"noise_cancellation"`
	NotificationsEnabled bool `json:"notifications_enabled"`
	SnoozeMin            int  `json:"snooze_min"`
	PollSec              int  `json:"poll_sec"`
}

// DefaultSettings mirrors the defaults a fresh install ships with.
func DefaultSettings() Settings {
	return Settings{
		SoundNotifications:   true,
		HighQualityAudio:     true,
		NoiseCancellation:    false,
		NotificationsEnabled: true,
		SnoozeMin:            5,
		PollSec:              10,
	}
}
