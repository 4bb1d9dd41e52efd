package capture

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bloomlabs/bloom-core/internal/bus"
	"github.com/bloomlabs/bloom-core/internal/config"
	"github.com/bloomlabs/bloom-core/internal/protocol"
	"github.com/bloomlabs/bloom-core/internal/session"
	"github.com/nats-io/nats.go"
)

// Service is the bus-facing capture adapter: edge devices publish finished
// recordings and control messages, and the service drives the session
// controller with them.
type Service struct {
	cfg        config.CaptureConfig
	bus        *bus.Client
	controller *session.Controller
	subs       []*nats.Subscription
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
}

func NewService(parent context.Context, cfg config.CaptureConfig, busClient *bus.Client, controller *session.Controller, log *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(parent)
	return &Service{
		cfg:        cfg,
		bus:        busClient,
		controller: controller,
		ctx:        ctx,
		cancel:     cancel,
		logger:     log.With(slog.String("component", "capture")),
	}
}

func (s *Service) Start() error {
	if !s.cfg.Enabled {
		return nil
	}
	subjects := map[string]nats.MsgHandler{
		protocol.SubjectCaptureComplete: s.handleCapture,
		protocol.SubjectSessionStart:    s.handleStart,
		protocol.SubjectSessionReset:    s.handleReset,
	}
	for subject, handler := range subjects {
		sub, err := s.bus.Conn().Subscribe(subject, handler)
		if err != nil {
			s.drain()
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

func (s *Service) Close() {
	s.cancel()
	s.drain()
	s.wg.Wait()
}

func (s *Service) drain() {
	for _, sub := range s.subs {
		_ = sub.Drain()
	}
	s.subs = nil
}

func (s *Service) Healthy() bool {
	return !s.cfg.Enabled || len(s.subs) == 3
}

func (s *Service) handleStart(_ *nats.Msg) {
	if _, err := s.controller.StartSession(s.ctx); err != nil {
		s.logger.Warn("start request rejected", slogError(err))
	}
}

func (s *Service) handleReset(_ *nats.Msg) {
	if err := s.controller.Reset(s.ctx); err != nil {
		s.logger.Warn("reset request rejected", slogError(err))
	}
}

func (s *Service) handleCapture(msg *nats.Msg) {
	var payload protocol.CaptureComplete
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		s.logger.Warn("failed to decode capture message", slogError(err))
		return
	}
	media, err := base64.StdEncoding.DecodeString(payload.MediaBase64)
	if err != nil {
		s.logger.Warn("failed to decode capture media", slogError(err))
		return
	}

	kind := payload.Kind
	if kind == "" {
		kind = s.cfg.DefaultKind
	}

	// The pipeline is synchronous; run it off the subscription callback so
	// slow remote calls never stall the bus dispatcher. Single-flight is
	// the controller's job.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.controller.CaptureComplete(s.ctx, media, payload.MimeType, kind)
		switch {
		case err == nil:
		case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrNotRecording):
			s.logger.Warn("capture rejected", slogError(err))
		default:
			// Pipeline failures already moved the controller to the
			// error state and were logged there.
		}
	}()
}

func slogError(err error) slog.Attr {
	return slog.String("error", err.Error())
}
