package audio

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestPlayer() (*Player, *[]func()) {
	p := NewPlayer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	pending := &[]func(){}
	p.afterFunc = func(_ time.Duration, f func()) func() {
		*pending = append(*pending, f)
		return func() {}
	}
	return p, pending
}

func testBuffer() *Buffer {
	return &Buffer{Samples: make([]float32, 2400), SampleRate: SampleRate}
}

func TestPlayRequiresBuffer(t *testing.T) {
	p, _ := newTestPlayer()
	if err := p.Play(); err != ErrNoBuffer {
		t.Fatalf("expected ErrNoBuffer, got %v", err)
	}
}

func TestPlayAndNaturalCompletion(t *testing.T) {
	p, pending := newTestPlayer()
	p.SetBuffer(testBuffer())
	if err := p.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !p.Playing() {
		t.Fatal("expected playing flag set")
	}
	(*pending)[0]()
	if p.Playing() {
		t.Fatal("expected playing flag cleared on natural completion")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	p, _ := newTestPlayer()
	p.SetBuffer(testBuffer())
	p.Stop() // no-op without a voice
	if err := p.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	p.Stop()
	if p.Playing() {
		t.Fatal("expected stop to clear playing flag")
	}
	p.Stop() // no-op again
}

func TestReplayRestartsSingleVoice(t *testing.T) {
	p, pending := newTestPlayer()
	p.SetBuffer(testBuffer())
	if err := p.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := p.Play(); err != nil {
		t.Fatalf("replay: %v", err)
	}
	// The first voice's completion must not clear the second voice.
	(*pending)[0]()
	if !p.Playing() {
		t.Fatal("stale voice completion cleared the active voice")
	}
	(*pending)[1]()
	if p.Playing() {
		t.Fatal("expected active voice to complete")
	}
}

func TestSetBufferStopsActiveVoice(t *testing.T) {
	p, _ := newTestPlayer()
	p.SetBuffer(testBuffer())
	if err := p.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	p.SetBuffer(testBuffer())
	if p.Playing() {
		t.Fatal("replacing the buffer must invalidate the in-flight voice")
	}
}

func TestClearDropsBuffer(t *testing.T) {
	p, _ := newTestPlayer()
	p.SetBuffer(testBuffer())
	if err := p.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	p.Clear()
	if p.Playing() {
		t.Fatal("expected clear to stop playback")
	}
	if p.Buffer() != nil {
		t.Fatal("expected buffer dropped")
	}
}
