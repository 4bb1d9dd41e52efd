package session

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bloomlabs/bloom-core/internal/analysis"
	"github.com/bloomlabs/bloom-core/internal/audio"
	"github.com/bloomlabs/bloom-core/internal/mood"
	"github.com/bloomlabs/bloom-core/internal/speech"
	"github.com/bloomlabs/bloom-core/internal/visual"
)

// Status is the controller's processing state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRecording Status = "recording"
	StatusAnalyzing Status = "analyzing"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Snapshot is a point-in-time copy of the controller's state for the
// presentation layer. Result is set only while completed.
type Snapshot struct {
	SessionID string               `json:"session_id"`
	Status    Status               `json:"status"`
	Message   string               `json:"message,omitempty"`
	Result    *mood.AnalysisResult `json:"result,omitempty"`
	Crisis    bool                 `json:"crisis"`
	Playing   bool                 `json:"playing"`
}

// StateSink receives every state transition, e.g. for bus broadcast.
type StateSink interface {
	StateChanged(snap Snapshot)
}

// Celebrator triggers the one-shot decorative effect for affirmative
// outcomes. Implementations must be fast; failures are ignored.
type Celebrator interface {
	Celebrate(sessionID, emotion string, style mood.Style, baseColor string)
}

// Timeline records session events for the timeline store.
type Timeline interface {
	Record(ctx context.Context, sessionID, eventType string, payload []byte) error
}

// Config bounds the controller's remote calls and media intake.
type Config struct {
	SampleRate      int
	Voice           string
	AnalysisTimeout time.Duration
	SpeechTimeout   time.Duration
	MaxMediaBytes   int
}

// Controller owns the session state machine: it sequences capture
// completion through analysis, speech synthesis and audio decode, holding
// exactly one result and one audio buffer at a time.
type Controller struct {
	cfg        Config
	analyzer   analysis.Analyzer
	synth      speech.Synthesizer
	player     *audio.Player
	sink       StateSink
	celebrator Celebrator
	timeline   Timeline
	logger     *slog.Logger

	mu        sync.Mutex
	status    Status
	sessionID string
	message   string
	result    *mood.AnalysisResult
	engine    *visual.Engine
	started   time.Time
	wg        sync.WaitGroup
}

func NewController(cfg Config, analyzer analysis.Analyzer, synth speech.Synthesizer, player *audio.Player, logger *slog.Logger) *Controller {
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = 45 * time.Second
	}
	if cfg.SpeechTimeout <= 0 {
		cfg.SpeechTimeout = 45 * time.Second
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = audio.SampleRate
	}
	return &Controller{
		cfg:      cfg,
		analyzer: analyzer,
		synth:    synth,
		player:   player,
		logger:   logger.With(slog.String("component", "session")),
		status:   StatusIdle,
	}
}

// SetStateSink registers the transition broadcast hook.
func (c *Controller) SetStateSink(sink StateSink) { c.sink = sink }

// SetCelebrator registers the decorative effect hook.
func (c *Controller) SetCelebrator(cel Celebrator) { c.celebrator = cel }

// SetTimeline registers the session event store.
func (c *Controller) SetTimeline(tl Timeline) { c.timeline = tl }

// StartSession begins a new recording. Allowed from idle, completed and
// error; any held result and audio from the prior session is discarded
// first so no audio leaks across sessions.
func (c *Controller) StartSession(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.status == StatusRecording || c.status == StatusAnalyzing {
		c.mu.Unlock()
		return "", ErrBusy
	}
	c.player.Clear()
	c.result = nil
	c.engine = nil
	c.message = ""
	c.sessionID = uuid.NewString()
	c.status = StatusRecording
	id := c.sessionID
	c.mu.Unlock()

	c.logger.Info("session started", slog.String("session_id", id))
	c.record(ctx, id, "session.started", nil)
	c.notify()
	return id, nil
}

// CaptureComplete feeds a finished recording into the pipeline. It is
// single-flight: a second call while analyzing is rejected, never queued.
// Kind selects the fallback mime type when none was provided.
func (c *Controller) CaptureComplete(ctx context.Context, media []byte, mimeType, kind string) error {
	c.mu.Lock()
	switch c.status {
	case StatusAnalyzing:
		c.mu.Unlock()
		return ErrBusy
	case StatusRecording:
	default:
		c.mu.Unlock()
		return ErrNotRecording
	}
	c.status = StatusAnalyzing
	id := c.sessionID
	c.mu.Unlock()
	c.notify()

	if mimeType == "" {
		if kind == "video" {
			mimeType = "video/webm"
		} else {
			mimeType = "audio/webm"
		}
	}
	if len(media) == 0 {
		return c.fail(ctx, id, fmt.Errorf("%w: empty media blob", ErrCapture))
	}
	if c.cfg.MaxMediaBytes > 0 && len(media) > c.cfg.MaxMediaBytes {
		return c.fail(ctx, id, fmt.Errorf("%w: media blob of %d bytes exceeds limit", ErrCapture, len(media)))
	}

	return c.runPipeline(ctx, id, media, mimeType)
}

func (c *Controller) runPipeline(ctx context.Context, id string, media []byte, mimeType string) error {
	analyzeCtx, cancel := context.WithTimeout(ctx, c.cfg.AnalysisTimeout)
	result, err := c.analyzer.Analyze(analyzeCtx, analysis.Request{SessionID: id, Media: media, MimeType: mimeType})
	cancel()
	if err != nil {
		return c.fail(ctx, id, fmt.Errorf("%w: %v", ErrAnalysis, err))
	}
	// A response failing schema validation is indistinguishable from a
	// transport failure to the rest of the pipeline.
	if err := result.Validate(); err != nil {
		return c.fail(ctx, id, fmt.Errorf("%w: invalid payload: %v", ErrAnalysis, err))
	}

	synthCtx, cancel := context.WithTimeout(ctx, c.cfg.SpeechTimeout)
	pcm, err := c.synth.Synthesize(synthCtx, speech.SynthRequest{SessionID: id, Text: result.AffirmationText, Voice: c.cfg.Voice})
	cancel()
	if err != nil {
		return c.fail(ctx, id, fmt.Errorf("%w: %v", ErrSynthesis, err))
	}
	if len(pcm) == 0 {
		return c.fail(ctx, id, fmt.Errorf("%w: empty audio", ErrSynthesis))
	}

	buf, err := audio.DecodePCM16(pcm, c.cfg.SampleRate)
	if err != nil {
		return c.fail(ctx, id, fmt.Errorf("%w: %v", ErrDecode, err))
	}

	c.mu.Lock()
	if c.sessionID != id || c.status != StatusAnalyzing {
		// A reset raced the pipeline; drop the stale result.
		c.mu.Unlock()
		return nil
	}
	c.player.SetBuffer(buf)
	c.result = &result
	c.engine = visual.NewEngine(result.FlowerConfig, seedFor(id))
	c.status = StatusCompleted
	c.started = time.Now()
	c.mu.Unlock()

	c.logger.Info("session completed",
		slog.String("session_id", id),
		slog.String("emotion", result.Emotion),
		slog.String("style", string(result.FlowerConfig.Style)),
		slog.Float64("distress", result.DistressScore))
	if payload, err := jsonPayload(result); err == nil {
		c.record(ctx, id, "session.completed", payload)
	}
	c.notify()
	c.maybeCelebrate(id, result)
	return nil
}

// celebratoryStyles are the visual styles eligible for the decorative
// effect on affirmative outcomes.
var celebratoryStyles = map[mood.Style]bool{
	mood.StyleCalm:     true,
	mood.StyleParticle: true,
}

func (c *Controller) maybeCelebrate(id string, result mood.AnalysisResult) {
	if c.celebrator == nil || !result.Affirmative() || !celebratoryStyles[result.FlowerConfig.Style] {
		return
	}
	// Best-effort: runs off the transition path and may do nothing.
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.celebrator.Celebrate(id, result.Emotion, result.FlowerConfig.Style, result.FlowerConfig.BaseColor)
	}()
}

func (c *Controller) fail(ctx context.Context, id string, err error) error {
	c.logger.Warn("session pipeline failed",
		slog.String("session_id", id),
		slog.String("error", err.Error()))

	c.mu.Lock()
	if c.sessionID == id {
		c.player.Clear()
		c.result = nil
		c.engine = nil
		c.status = StatusError
		c.message = GenericErrorMessage
	}
	c.mu.Unlock()

	c.record(ctx, id, "session.failed", []byte(err.Error()))
	c.notify()
	return err
}

// Reset returns the controller to idle, stopping any active playback and
// discarding the held result and audio buffer. Rejected while a pipeline
// is in flight.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusAnalyzing {
		c.mu.Unlock()
		return ErrBusy
	}
	id := c.sessionID
	c.player.Clear()
	c.result = nil
	c.engine = nil
	c.message = ""
	c.status = StatusIdle
	c.mu.Unlock()

	if id != "" {
		c.record(ctx, id, "session.reset", nil)
	}
	c.notify()
	return nil
}

// Play starts (or restarts) affirmation playback for a completed session.
func (c *Controller) Play() error {
	c.mu.Lock()
	if c.status != StatusCompleted {
		c.mu.Unlock()
		return ErrNoResult
	}
	c.mu.Unlock()
	return c.player.Play()
}

// StopPlayback halts the active voice; no-op when nothing is playing.
func (c *Controller) StopPlayback() {
	c.player.Stop()
}

// AudioBuffer returns the decoded affirmation buffer, if any.
func (c *Controller) AudioBuffer() *audio.Buffer {
	return c.player.Buffer()
}

// Scene returns the visualization frame at the given elapsed time since
// the session completed.
func (c *Controller) Scene(elapsed time.Duration) (visual.Scene, error) {
	c.mu.Lock()
	engine := c.engine
	c.mu.Unlock()
	if engine == nil {
		return visual.Scene{}, ErrNoResult
	}
	return engine.Frame(elapsed), nil
}

// Elapsed returns how long ago the current session completed.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusCompleted {
		return 0
	}
	return time.Since(c.started)
}

// Snapshot copies the current state for the presentation layer.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		SessionID: c.sessionID,
		Status:    c.status,
		Message:   c.message,
		Playing:   c.player.Playing(),
	}
	if c.result != nil {
		copied := *c.result
		snap.Result = &copied
		snap.Crisis = copied.NeedsCrisisSupport()
	}
	return snap
}

// Close waits for best-effort side effects to finish.
func (c *Controller) Close() {
	c.wg.Wait()
}

func (c *Controller) notify() {
	if c.sink == nil {
		return
	}
	c.sink.StateChanged(c.Snapshot())
}

func (c *Controller) record(ctx context.Context, id, eventType string, payload []byte) {
	if c.timeline == nil {
		return
	}
	if err := c.timeline.Record(ctx, id, eventType, payload); err != nil {
		c.logger.Warn("failed to record session event",
			slog.String("session_id", id),
			slog.String("event", eventType),
			slogError(err))
	}
}

func jsonPayload(result mood.AnalysisResult) ([]byte, error) {
	return json.Marshal(result)
}

func seedFor(sessionID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(sessionID))
	return int64(h.Sum64())
}

func slogError(err error) slog.Attr {
	return slog.String("error", err.Error())
}
