package audio

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrNoBuffer = errors.New("no decoded audio buffer")

// Player holds at most one decoded buffer and at most one active voice.
// Replacing the buffer invalidates any in-flight voice; only one voice
// ever plays at a time.
type Player struct {
	mu      sync.Mutex
	buffer  *Buffer
	playing bool
	voice   int
	stop    func()
	log     *slog.Logger

	// afterFunc schedules the natural end of a voice; injectable so tests
	// can complete playback without waiting.
	afterFunc func(time.Duration, func()) func()
}

func NewPlayer(log *slog.Logger) *Player {
	return &Player{
		log: log.With(slog.String("component", "player")),
		afterFunc: func(d time.Duration, f func()) func() {
			t := time.AfterFunc(d, f)
			return func() { t.Stop() }
		},
	}
}

// SetBuffer replaces the decoded buffer, stopping any active voice first.
func (p *Player) SetBuffer(buf *Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.buffer = buf
}

// Buffer returns the currently held buffer, or nil.
func (p *Player) Buffer() *Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer
}

// Play starts playback from sample zero. An already active voice is
// stopped first.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buffer == nil {
		return ErrNoBuffer
	}
	p.stopLocked()

	p.playing = true
	p.voice++
	voice := p.voice
	p.stop = p.afterFunc(p.buffer.Duration(), func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.voice == voice && p.playing {
			p.playing = false
			p.stop = nil
		}
	})
	p.log.Debug("voice started", slog.Duration("duration", p.buffer.Duration()))
	return nil
}

// Stop halts the active voice immediately; no-op when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Clear stops any active voice and drops the held buffer.
func (p *Player) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.buffer = nil
}

// Playing reports whether a voice is currently active.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) stopLocked() {
	if !p.playing {
		return
	}
	p.playing = false
	p.voice++
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
}
