package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/julianstephens/vocealarm/internal/logger"
)

// ErrDeviceUnavailable is returned when the audio hardware (microphone or
// output) cannot be acquired. Callers surface it as status, never as a
// crash.
var ErrDeviceUnavailable = errors.New("audio device unavailable")

// Global audio context singleton. oto only supports one context per
// process, so its format is fixed by the first sound played.
var (
	globalAudioCtx     *oto.Context
	globalAudioCtxOnce sync.Once
	audioCtxErr        error
)

func initAudioContext(format *Format) error {
	globalAudioCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			audioCtxErr = err
			return
		}

		// Wait for the hardware audio devices to be ready
		<-readyChan

		globalAudioCtx = ctx
		logger.Debug("audio context initialized", "sample_rate", format.SampleRate, "channels", format.Channels)
	})

	if audioCtxErr != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, audioCtxErr)
	}
	return nil
}

// Player manages looping alarm sound playback with cancellation support
type Player struct {
	stopChan chan struct{}
	mu       sync.Mutex
	stopped  bool
}

// PlayLoop starts looping playback of the given WAV data and returns a
// Player for control. Playback continues until Stop is called.
func PlayLoop(wavData []byte) (*Player, error) {
	format, pcm, err := ParseWAV(wavData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse alarm audio: %w", err)
	}

	if err := initAudioContext(format); err != nil {
		return nil, err
	}

	p := &Player{
		stopChan: make(chan struct{}),
	}

	go p.playLoop(pcm)

	return p, nil
}

func (p *Player) playLoop(pcm []byte) {
	for {
		// A fresh oto player per iteration restarts the sound
		player := globalAudioCtx.NewPlayer(bytes.NewReader(pcm))
		player.Play()

		for player.IsPlaying() {
			select {
			case <-p.stopChan:
				player.Close()
				return
			case <-time.After(10 * time.Millisecond):
			}
		}

		if err := player.Close(); err != nil {
			logger.Error("failed to close audio player", "error", err)
		}

		select {
		case <-p.stopChan:
			return
		default:
		}
	}
}

// Stop halts playback. Safe to call more than once.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stopChan)
}
