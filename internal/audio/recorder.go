package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/vocealarm/internal/models"
)

// Status represents the current state of the recorder
type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusRecording Status = "RECORDING"
	StatusStopped   Status = "STOPPED" // capture complete, asset not yet collected
)

// MaxRecordingDuration bounds voice message length and storage size.
const MaxRecordingDuration = 30 * time.Second

// Device abstracts the microphone. Open acquires the hardware and yields a
// raw PCM stream in the requested format; Close on the returned stream must
// release the device deterministically.
type Device interface {
	Open(ctx context.Context, format Format) (io.ReadCloser, error)
}

// Recorder captures a bounded-duration voice recording from a Device.
type Recorder struct {
	device  Device
	format  Format
	ceiling time.Duration

	mu     sync.Mutex
	status Status
	stream io.ReadCloser
	buf    bytes.Buffer
	done   chan struct{}
}

// NewRecorder creates a recorder capturing in the given format. A
// non-positive ceiling falls back to MaxRecordingDuration.
func NewRecorder(device Device, format Format, ceiling time.Duration) *Recorder {
	if ceiling <= 0 {
		ceiling = MaxRecordingDuration
	}
	return &Recorder{
		device:  device,
		format:  format,
		ceiling: ceiling,
		status:  StatusIdle,
	}
}

// Start begins capture. Fails with ErrDeviceUnavailable when the microphone
// cannot be acquired, leaving the recorder in the pre-recording state.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == StatusRecording {
		return fmt.Errorf("recording already in progress")
	}

	stream, err := r.device.Open(ctx, r.format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	r.stream = stream
	r.buf.Reset()
	r.status = StatusRecording
	r.done = make(chan struct{})

	go r.readLoop(stream, r.done)

	return nil
}

// readLoop drains the device stream into the buffer until the byte ceiling
// is hit, the stream ends, or the stream is closed from Stop/Reset.
func (r *Recorder) readLoop(stream io.ReadCloser, done chan struct{}) {
	defer close(done)

	maxBytes := int(r.ceiling.Seconds() * float64(r.format.ByteRate()))
	chunk := make([]byte, 4096)

	for {
		n, err := stream.Read(chunk)
		if n > 0 {
			r.mu.Lock()
			remaining := maxBytes - r.buf.Len()
			if n > remaining {
				n = remaining
			}
			r.buf.Write(chunk[:n])
			full := r.buf.Len() >= maxBytes
			r.mu.Unlock()

			if full {
				r.autoStop(stream)
				return
			}
		}
		if err != nil {
			r.mu.Lock()
			if r.status == StatusRecording {
				r.status = StatusStopped
				r.stream = nil
			}
			r.mu.Unlock()
			return
		}
	}
}

func (r *Recorder) autoStop(stream io.ReadCloser) {
	r.mu.Lock()
	if r.status == StatusRecording {
		r.status = StatusStopped
		r.stream = nil
	}
	r.mu.Unlock()
	stream.Close()
}

// Stop ends capture and yields the finished asset. Once committed to an
// alarm or note the asset is immutable.
func (r *Recorder) Stop() (*models.VoiceRecording, error) {
	r.mu.Lock()
	if r.status == StatusIdle {
		r.mu.Unlock()
		return nil, fmt.Errorf("no recording in progress")
	}

	stream := r.stream
	r.stream = nil
	done := r.done
	r.mu.Unlock()

	if stream != nil {
		stream.Close()
	}
	if done != nil {
		<-done
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pcm := make([]byte, r.buf.Len())
	copy(pcm, r.buf.Bytes())
	r.buf.Reset()
	r.status = StatusIdle
	r.done = nil

	return &models.VoiceRecording{
		ID:          uuid.New().String(),
		Audio:       EncodeWAV(r.format, pcm),
		DurationSec: Duration(r.format, len(pcm)),
		CreatedAt:   time.Now(),
	}, nil
}

// Reset discards any in-progress or completed capture and releases the
// device. Safe to call in any state.
func (r *Recorder) Reset() {
	r.mu.Lock()
	stream := r.stream
	r.stream = nil
	done := r.done
	r.mu.Unlock()

	if stream != nil {
		stream.Close()
	}
	if done != nil {
		<-done
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf.Reset()
	r.status = StatusIdle
	r.done = nil
}

// Status returns the recorder state and the duration captured so far.
func (r *Recorder) Status() (Status, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status, Duration(r.format, r.buf.Len())
}
