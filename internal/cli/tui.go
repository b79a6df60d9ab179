package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/vocealarm/internal/logger"
	"github.com/julianstephens/vocealarm/internal/scheduler"
	"github.com/julianstephens/vocealarm/internal/session"
	"github.com/julianstephens/vocealarm/internal/tui"
)

type TuiCmd struct{}

// Run opens the interactive terminal UI. The TUI carries its own session
// and scheduler so alarms ring inside the UI while it is open; a separate
// 'vocealarm run' daemon is only needed when no TUI is attached.
func (c *TuiCmd) Run(ctx *Context) error {
	storePath := ctx.Store.GetConfigPath()

	if err := logger.Init(logger.Config{Debug: ctx.Debug, ConfigDir: filepath.Dir(storePath)}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	ctx.PerformAutomaticBackup()

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	sess := session.New(ctx.Store, playLoop, scheduler.NextOccurrence)
	sched := scheduler.New(ctx.Store, sess, time.Duration(settings.PollSec)*time.Second)

	if pid := runningDaemonPID(storePath); pid != 0 {
		// A daemon is already polling this store; let it own triggering.
		logger.Info("daemon detected, TUI scheduler disabled", "pid", pid)
	} else {
		schedCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := sched.Start(schedCtx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	p := tea.NewProgram(tui.NewModel(ctx.Store, sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
