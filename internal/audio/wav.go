package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Format holds WAV audio format information
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// ByteRate returns the number of PCM bytes per second of audio.
func (f Format) ByteRate() int {
	return f.SampleRate * f.Channels * f.BitDepth / 8
}

// DefaultFormat is the capture format used for voice messages.
var DefaultFormat = Format{SampleRate: 44100, Channels: 1, BitDepth: 16}

// LowQualityFormat is used when the high-quality-audio preference is off.
var LowQualityFormat = Format{SampleRate: 22050, Channels: 1, BitDepth: 16}

// ParseWAV parses a WAV file and returns the format and raw PCM data
func ParseWAV(data []byte) (*Format, []byte, error) {
	reader := bytes.NewReader(data)

	riff := make([]byte, 4)
	if _, err := io.ReadFull(reader, riff); err != nil {
		return nil, nil, fmt.Errorf("invalid wav data: %w", err)
	}
	if string(riff) != "RIFF" {
		return nil, nil, fmt.Errorf("invalid wav data: missing RIFF header")
	}

	// Skip file size
	reader.Seek(4, io.SeekCurrent)

	wave := make([]byte, 4)
	if _, err := io.ReadFull(reader, wave); err != nil {
		return nil, nil, fmt.Errorf("invalid wav data: %w", err)
	}
	if string(wave) != "WAVE" {
		return nil, nil, fmt.Errorf("invalid wav data: missing WAVE header")
	}

	format := &Format{}
	var dataStart int64
	var dataSize uint32

	for {
		chunkID := make([]byte, 4)
		if _, err := io.ReadFull(reader, chunkID); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, nil, err
		}

		var chunkSize uint32
		if err := binary.Read(reader, binary.LittleEndian, &chunkSize); err != nil {
			return nil, nil, err
		}

		switch string(chunkID) {
		case "fmt ":
			var audioFormat uint16
			binary.Read(reader, binary.LittleEndian, &audioFormat)

			var numChannels uint16
			binary.Read(reader, binary.LittleEndian, &numChannels)
			format.Channels = int(numChannels)

			var sampleRate uint32
			binary.Read(reader, binary.LittleEndian, &sampleRate)
			format.SampleRate = int(sampleRate)

			// Skip byte rate and block align
			reader.Seek(6, io.SeekCurrent)

			var bitsPerSample uint16
			binary.Read(reader, binary.LittleEndian, &bitsPerSample)
			format.BitDepth = int(bitsPerSample)

			// Skip any extra format bytes plus the pad byte of an
			// odd-sized chunk
			if extra := int64(chunkSize) - 16 + int64(chunkSize%2); extra > 0 {
				reader.Seek(extra, io.SeekCurrent)
			}
		case "data":
			dataStart, _ = reader.Seek(0, io.SeekCurrent)
			dataSize = chunkSize
		default:
			// RIFF chunks are word-aligned: odd sizes carry a pad byte
			reader.Seek(int64(chunkSize+chunkSize%2), io.SeekCurrent)
		}

		if dataSize > 0 {
			break
		}
	}

	if format.SampleRate == 0 || dataSize == 0 {
		return nil, nil, fmt.Errorf("invalid wav data: missing fmt or data chunk")
	}

	pcm := make([]byte, dataSize)
	reader.Seek(dataStart, io.SeekStart)
	if _, err := io.ReadFull(reader, pcm); err != nil {
		return nil, nil, fmt.Errorf("invalid wav data: truncated data chunk: %w", err)
	}

	return format, pcm, nil
}

// EncodeWAV wraps raw PCM data in a WAV container
func EncodeWAV(format Format, pcm []byte) []byte {
	var buf bytes.Buffer

	blockAlign := format.Channels * format.BitDepth / 8

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(format.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(format.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(format.ByteRate()))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(format.BitDepth))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// Duration returns the playing time of a PCM payload in the given format.
func Duration(format Format, pcmLen int) float64 {
	byteRate := format.ByteRate()
	if byteRate == 0 {
		return 0
	}
	return float64(pcmLen) / float64(byteRate)
}
