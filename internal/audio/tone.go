package audio

import "math"

// DefaultAlarmTone synthesizes the fallback alarm sound used when an alarm
// carries no voice recording: one second of an 880 Hz pulse pattern, meant
// to be played on a loop.
func DefaultAlarmTone() []byte {
	format := Format{SampleRate: 44100, Channels: 1, BitDepth: 16}

	const (
		freq     = 880.0
		beepSec  = 0.25
		gapSec   = 0.15
		totalSec = 1.0
	)

	samples := int(totalSec * float64(format.SampleRate))
	pcm := make([]byte, samples*2)

	cycle := beepSec + gapSec
	for i := 0; i < samples; i++ {
		t := float64(i) / float64(format.SampleRate)
		var v float64
		if math.Mod(t, cycle) < beepSec {
			v = math.Sin(2 * math.Pi * freq * t)
			// Soften the edges to avoid clicks between beeps
			edge := math.Mod(t, cycle)
			if edge < 0.01 {
				v *= edge / 0.01
			} else if beepSec-edge < 0.01 {
				v *= (beepSec - edge) / 0.01
			}
		}
		sample := int16(v * 0.6 * math.MaxInt16)
		pcm[i*2] = byte(sample)
		pcm[i*2+1] = byte(sample >> 8)
	}

	return EncodeWAV(format, pcm)
}
