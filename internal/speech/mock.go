package speech

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"time"
)

type mockSynth struct {
	sampleRate int
}

// NewMockSynth returns a synthesizer producing a short deterministic tone,
// 60 ms of audio per word, for tests and local bring-up.
func NewMockSynth(sampleRate int) Synthesizer {
	return &mockSynth{sampleRate: sampleRate}
}

func (m *mockSynth) Synthesize(ctx context.Context, req SynthRequest) ([]byte, error) {
	if req.Text == "" {
		return nil, errors.New("empty affirmation text")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(20 * time.Millisecond):
	}

	words := 1
	for _, r := range req.Text {
		if r == ' ' {
			words++
		}
	}
	samples := m.sampleRate * 60 * words / 1000
	pcm := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := int16(6000 * math.Sin(2*math.Pi*220*float64(i)/float64(m.sampleRate)))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return pcm, nil
}
