package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// SampleRate is the fixed rate of affirmation audio: mono 16-bit signed
// little-endian PCM at 24 kHz, no container framing.
const SampleRate = 24000

var ErrOddPCMLength = errors.New("pcm payload has odd byte length")

// Buffer is an in-memory decoded audio clip.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// DecodePCM16 converts little-endian signed 16-bit mono PCM bytes into
// normalized float samples in [-1.0, 1.0).
func DecodePCM16(raw []byte, sampleRate int) (*Buffer, error) {
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%d bytes: %w", len(raw), ErrOddPCMLength)
	}
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float32(v) / 32768.0
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate}, nil
}
