package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/hashstructure/v2"

	"github.com/julianstephens/vocealarm/internal/audio"
	"github.com/julianstephens/vocealarm/internal/logger"
	"github.com/julianstephens/vocealarm/internal/scheduler"
	"github.com/julianstephens/vocealarm/internal/session"
	"github.com/julianstephens/vocealarm/internal/storage"
)

type RunCmd struct{}

// Run starts the alarm daemon: the polling trigger loop plus, for a
// JSON store, a file watcher that reloads when another process edits
// the store. It blocks until SIGINT/SIGTERM.
func (c *RunCmd) Run(ctx *Context) error {
	storePath := ctx.Store.GetConfigPath()

	if err := logger.Init(logger.Config{Debug: ctx.Debug, ConfigDir: filepath.Dir(storePath)}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := acquireDaemonLock(storePath); err != nil {
		return err
	}
	defer releaseDaemonLock(storePath)

	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	sess := session.New(ctx.Store, playLoop, scheduler.NextOccurrence)
	sched := scheduler.New(ctx.Store, sess, time.Duration(settings.PollSec)*time.Second)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Start(runCtx); err != nil {
		return err
	}
	defer sched.Stop()

	logger.Info("daemon started", "store", storePath, "poll_sec", settings.PollSec)
	fmt.Printf("vocealarm daemon running (store: %s). Ctrl-C to stop.\n", storePath)

	if jsonStore, ok := ctx.Store.(*storage.JSONStore); ok {
		watchDone, err := watchStoreFile(runCtx, jsonStore)
		if err != nil {
			logger.Warn("store watcher unavailable", "error", err)
		} else {
			defer func() { <-watchDone }()
		}
	}

	<-runCtx.Done()
	logger.Info("daemon stopping")
	return nil
}

// playLoop adapts looping audio playback to the session's player hook.
func playLoop(wav []byte) (session.AudioPlayer, error) {
	player, err := audio.PlayLoop(wav)
	if err != nil {
		return nil, err
	}
	return player, nil
}

// watchStoreFile reloads a JSON store when another vocealarm process
// rewrites it. The store is replaced by atomic rename, so the watch is
// on the directory, filtered to the store filename. A hash over the
// alarm collection skips reload noise from our own writes.
func watchStoreFile(ctx context.Context, store *storage.JSONStore) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	storePath := store.GetConfigPath()
	if err := watcher.Add(filepath.Dir(storePath)); err != nil {
		watcher.Close()
		return nil, err
	}

	lastHash, _ := alarmsHash(store)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer watcher.Close()

		// Debounce rapid rewrites
		var pending bool
		debounce := time.NewTicker(500 * time.Millisecond)
		defer debounce.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(storePath) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					pending = true
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("store watcher error", "error", err)

			case <-debounce.C:
				if !pending {
					continue
				}
				pending = false

				if err := store.Load(); err != nil {
					logger.Error("failed to reload store", "error", err)
					continue
				}
				hash, err := alarmsHash(store)
				if err != nil || hash == lastHash {
					continue
				}
				lastHash = hash
				logger.Info("store changed externally, alarms reloaded")
			}
		}
	}()

	return done, nil
}

func alarmsHash(store storage.Provider) (uint64, error) {
	alarms, err := store.GetAllAlarms()
	if err != nil {
		return 0, err
	}
	return hashstructure.Hash(alarms, hashstructure.FormatV2, nil)
}
