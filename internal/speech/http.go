package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type httpSynth struct {
	endpoint   string
	sampleRate int
	client     *http.Client
}

// NewHTTPSynth posts affirmation text to a remote speech endpoint that
// answers with base64 PCM.
func NewHTTPSynth(endpoint string, sampleRate int) Synthesizer {
	return &httpSynth{endpoint: endpoint, sampleRate: sampleRate, client: http.DefaultClient}
}

type httpRequest struct {
	Text       string `json:"text"`
	Voice      string `json:"voice,omitempty"`
	SampleRate int    `json:"sample_rate"`
}

type httpResponse struct {
	PCMBase64 string `json:"pcm_base64"`
}

func (s *httpSynth) Synthesize(ctx context.Context, req SynthRequest) ([]byte, error) {
	body, err := json.Marshal(httpRequest{Text: req.Text, Voice: req.Voice, SampleRate: s.sampleRate})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/v1/speech", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("speech endpoint returned status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var decoded httpResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode speech payload: %w", err)
	}
	pcm, err := base64.StdEncoding.DecodeString(decoded.PCMBase64)
	if err != nil {
		return nil, fmt.Errorf("decode speech pcm: %w", err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("speech endpoint returned no audio")
	}
	return pcm, nil
}
