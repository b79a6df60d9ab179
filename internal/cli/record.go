package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/vocealarm/internal/audio"
	"github.com/julianstephens/vocealarm/internal/models"
)

type RecordCmd struct {
	ID    string `arg:"" help:"Alarm ID to attach the voice message to."`
	File  string `short:"f" help:"WAV file to use as the voice message." type:"path"`
	Stdin bool   `help:"Capture raw PCM from stdin (e.g. piped from arecord)."`
	Clear bool   `help:"Remove the alarm's voice message instead."`
}

func (c *RecordCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	alarm, err := ctx.Store.GetAlarm(c.ID)
	if err != nil {
		return err
	}

	if c.Clear {
		alarm.VoiceRecording = nil
		if err := ctx.Store.UpdateAlarm(alarm); err != nil {
			return err
		}
		fmt.Printf("Removed voice message from alarm %s\n", alarm.ID)
		return nil
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	format := audio.LowQualityFormat
	if settings.HighQualityAudio {
		format = audio.DefaultFormat
	}

	var recording *models.VoiceRecording
	switch {
	case c.File != "":
		recording, err = recordingFromFile(c.File)
	case c.Stdin:
		recording, err = captureFromStdin(format)
	default:
		return fmt.Errorf("nothing to record: pass --file or --stdin")
	}
	if err != nil {
		return err
	}

	alarm.VoiceRecording = recording
	if err := ctx.Store.UpdateAlarm(alarm); err != nil {
		return err
	}

	fmt.Printf("Attached %.1fs voice message to alarm %s\n", recording.DurationSec, alarm.ID)
	return nil
}

// recordingFromFile validates an existing WAV file and wraps it as a
// voice message, enforcing the same length ceiling as live capture.
func recordingFromFile(path string) (*models.VoiceRecording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	format, pcm, err := audio.ParseWAV(data)
	if err != nil {
		return nil, fmt.Errorf("%s is not a playable WAV file: %w", path, err)
	}

	duration := audio.Duration(*format, len(pcm))
	if duration > audio.MaxRecordingDuration.Seconds() {
		return nil, fmt.Errorf("recording is %.1fs, limit is %.0fs",
			duration, audio.MaxRecordingDuration.Seconds())
	}

	return &models.VoiceRecording{
		ID:          uuid.New().String(),
		Audio:       data,
		DurationSec: duration,
		CreatedAt:   time.Now(),
	}, nil
}

// captureFromStdin runs the recorder against a stream of raw PCM on
// stdin. Capture ends at EOF or at the duration ceiling.
func captureFromStdin(format audio.Format) (*models.VoiceRecording, error) {
	rec := audio.NewRecorder(stdinDevice{}, format, audio.MaxRecordingDuration)

	if err := rec.Start(context.Background()); err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "Recording (%.0fs max, EOF to stop)...\n", audio.MaxRecordingDuration.Seconds())

	for {
		status, _ := rec.Status()
		if status != audio.StatusRecording {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	return rec.Stop()
}

// stdinDevice adapts standard input to the capture device interface.
type stdinDevice struct{}

func (stdinDevice) Open(_ context.Context, _ audio.Format) (io.ReadCloser, error) {
	return io.NopCloser(os.Stdin), nil
}
