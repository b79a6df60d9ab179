package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/vocealarm/internal/backup"
	"github.com/julianstephens/vocealarm/internal/logger"
	"github.com/julianstephens/vocealarm/internal/models"
	"github.com/julianstephens/vocealarm/internal/storage"
)

type Context struct {
	Store storage.Provider
	Debug bool
}

// PerformAutomaticBackup takes a best-effort backup of the store file.
// Failures are logged, never surfaced: a failed backup must not block
// the command that triggered it.
func (ctx *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("automatic backup failed", "error", err)
	}
}

func parseWeekdays(s string) ([]time.Weekday, error) {
	return models.ParseWeekdays(s)
}

func formatRepeatDays(days []time.Weekday) string {
	return models.FormatRepeatDays(days)
}

func formatAlarmLine(alarm models.Alarm) string {
	status := "on"
	if !alarm.IsEnabled {
		status = "off"
	}

	label := alarm.Label
	if label == "" {
		label = "(no label)"
	}

	line := fmt.Sprintf("  [%s] %s %s  %s (%s, %s)",
		status, alarm.Date, alarm.Time, label, formatRepeatDays(alarm.RepeatDays), alarm.Severity)

	if alarm.VoiceRecording != nil {
		line += fmt.Sprintf("  voice %.1fs", alarm.VoiceRecording.DurationSec)
	}
	return line
}

func parseSeverity(s string) (models.Severity, error) {
	return models.ParseSeverity(s)
}
