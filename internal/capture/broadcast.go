package capture

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/bloomlabs/bloom-core/internal/bus"
	"github.com/bloomlabs/bloom-core/internal/mood"
	"github.com/bloomlabs/bloom-core/internal/protocol"
	"github.com/bloomlabs/bloom-core/internal/session"
)

// Broadcaster mirrors controller transitions and celebration triggers onto
// the bus for edge displays. Everything here is best-effort.
type Broadcaster struct {
	bus    *bus.Client
	logger *slog.Logger
}

func NewBroadcaster(busClient *bus.Client, log *slog.Logger) *Broadcaster {
	return &Broadcaster{
		bus:    busClient,
		logger: log.With(slog.String("component", "broadcast")),
	}
}

// StateChanged implements session.StateSink.
func (b *Broadcaster) StateChanged(snap session.Snapshot) {
	msg := protocol.SessionState{
		SessionID: snap.SessionID,
		Status:    string(snap.Status),
		Message:   snap.Message,
		Crisis:    snap.Crisis,
		Timestamp: time.Now().UTC(),
	}
	b.publish(protocol.SubjectSessionState, msg)
}

// Celebrate implements session.Celebrator.
func (b *Broadcaster) Celebrate(sessionID, emotion string, style mood.Style, baseColor string) {
	msg := protocol.Celebrate{
		SessionID: sessionID,
		Emotion:   emotion,
		Style:     style,
		BaseColor: baseColor,
		Timestamp: time.Now().UTC(),
	}
	b.publish(protocol.SubjectCelebrate, msg)
}

func (b *Broadcaster) publish(subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Warn("failed to marshal bus message", slogError(err))
		return
	}
	if err := b.bus.Conn().Publish(subject, data); err != nil {
		b.logger.Warn("failed to publish bus message", slog.String("subject", subject), slogError(err))
	}
}
