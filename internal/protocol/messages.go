package protocol

import (
	"time"

	"github.com/bloomlabs/bloom-core/internal/mood"
)

// CaptureComplete carries a finished media recording from an edge capture
// adapter. Media is base64-encoded in transit. Kind selects the fallback
// mime type only; analysis behavior does not depend on it.
type CaptureComplete struct {
	SessionID   string    `json:"session_id,omitempty"`
	MediaBase64 string    `json:"media_base64"`
	MimeType    string    `json:"mime_type,omitempty"`
	Kind        string    `json:"kind,omitempty"` // audio | video
	Timestamp   time.Time `json:"timestamp"`
}

// SessionState is broadcast on every controller transition.
type SessionState struct {
	SessionID string    `json:"session_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Crisis    bool      `json:"crisis,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Celebrate is the one-shot decorative trigger published when a completed
// session carries an affirmative emotion with a celebratory style.
type Celebrate struct {
	SessionID string     `json:"session_id"`
	Emotion   string     `json:"emotion"`
	Style     mood.Style `json:"style"`
	BaseColor string     `json:"base_color"`
	Timestamp time.Time  `json:"timestamp"`
}

const (
	SubjectCaptureComplete = "capture.complete"
	SubjectSessionStart    = "session.start"
	SubjectSessionReset    = "session.reset"
	SubjectSessionState    = "session.state"
	SubjectCelebrate       = "session.celebrate"
)
