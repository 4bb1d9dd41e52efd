package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bloomlabs/bloom-core/internal/analysis"
	"github.com/bloomlabs/bloom-core/internal/audio"
	"github.com/bloomlabs/bloom-core/internal/bus"
	"github.com/bloomlabs/bloom-core/internal/capture"
	"github.com/bloomlabs/bloom-core/internal/config"
	"github.com/bloomlabs/bloom-core/internal/natsserver"
	"github.com/bloomlabs/bloom-core/internal/session"
	"github.com/bloomlabs/bloom-core/internal/sessionstore"
	"github.com/bloomlabs/bloom-core/internal/speech"
)

// Runtime wires configuration, telemetry, the bus, the session controller
// and the HTTP surface into one process.
type Runtime struct {
	cfg         config.Config
	logger      *slog.Logger
	httpServer  *http.Server
	tracerClose func(context.Context) error
	ready       atomic.Bool
	wg          sync.WaitGroup
}

func New(cfg config.Config, logger *slog.Logger) *Runtime {
	return &Runtime{
		cfg:    cfg,
		logger: logger,
	}
}

func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTelemetry, metricHandler, err := setupTelemetry(r.cfg, r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	r.tracerClose = shutdownTelemetry

	embedded, err := natsserver.Start(r.cfg.Bus, r.logger)
	if err != nil {
		return fmt.Errorf("failed to start embedded bus: %w", err)
	}
	defer embedded.Shutdown()

	busClient, err := bus.Connect(r.cfg.Bus, r.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to bus: %w", err)
	}
	defer busClient.Close()

	store, err := sessionstore.Open(ctx, r.cfg.SessionStore, r.logger)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer store.Close()

	analyzer, err := newAnalyzer(r.cfg.Analysis)
	if err != nil {
		return fmt.Errorf("failed to build analyzer: %w", err)
	}
	synth, err := newSynthesizer(r.cfg.Speech)
	if err != nil {
		return fmt.Errorf("failed to build synthesizer: %w", err)
	}

	player := audio.NewPlayer(r.logger)
	controller := session.NewController(session.Config{
		SampleRate:      r.cfg.Speech.SampleRate,
		Voice:           r.cfg.Speech.Voice,
		AnalysisTimeout: time.Duration(r.cfg.Analysis.TimeoutMS) * time.Millisecond,
		SpeechTimeout:   time.Duration(r.cfg.Speech.TimeoutMS) * time.Millisecond,
		MaxMediaBytes:   r.cfg.Capture.MaxMediaBytes,
	}, analyzer, synth, player, r.logger)
	defer controller.Close()

	broadcaster := capture.NewBroadcaster(busClient, r.logger)
	controller.SetStateSink(broadcaster)
	controller.SetCelebrator(broadcaster)
	controller.SetTimeline(store)

	captureService := capture.NewService(ctx, r.cfg.Capture, busClient, controller, r.logger)
	if err := captureService.Start(); err != nil {
		return fmt.Errorf("failed to start capture service: %w", err)
	}
	defer captureService.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)
	if metricHandler != nil {
		mux.Handle("/metrics", metricHandler)
	}
	registerSessionAPI(mux, controller, r.logger)

	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	r.ready.Store(true)
	r.logger.Info("runtime started", slog.String("addr", addr))

	<-ctx.Done()
	r.logger.Info("runtime stopping")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	r.wg.Wait()

	if r.tracerClose != nil {
		if err := r.tracerClose(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}

	return nil
}

func newAnalyzer(cfg config.AnalysisConfig) (analysis.Analyzer, error) {
	switch cfg.Mode {
	case "http":
		return analysis.NewHTTPAnalyzer(cfg.Endpoint), nil
	case "exec":
		return analysis.NewExecAnalyzer(cfg.Command)
	default:
		return analysis.NewMockAnalyzer(), nil
	}
}

func newSynthesizer(cfg config.SpeechConfig) (speech.Synthesizer, error) {
	switch cfg.Mode {
	case "http":
		return speech.NewHTTPSynth(cfg.Endpoint, cfg.SampleRate), nil
	case "exec":
		return speech.NewExecSynth(cfg.Command, cfg.SampleRate)
	default:
		return speech.NewMockSynth(cfg.SampleRate), nil
	}
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}
