package analysis

import (
	"context"

	"github.com/bloomlabs/bloom-core/internal/mood"
)

// Request carries a finished media recording to the analyzer.
type Request struct {
	SessionID string
	Media     []byte
	MimeType  string
}

// Analyzer is the contract for the remote emotion analysis boundary.
// Implementations return the decoded payload as-is; schema validation
// happens at the session controller.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (mood.AnalysisResult, error)
}
