package speech

import "context"

// SynthRequest carries affirmation text to a speech provider.
type SynthRequest struct {
	SessionID string
	Text      string
	Voice     string
}

// Synthesizer is the contract for the affirmation speech boundary. The
// returned payload is headerless little-endian 16-bit mono PCM at the
// provider's configured sample rate.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthRequest) ([]byte, error)
}
