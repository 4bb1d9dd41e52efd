package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bloomlabs/bloom-core/internal/mood"
)

type httpAnalyzer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPAnalyzer posts recordings to a remote analysis endpoint that
// answers with an AnalysisResult JSON object.
func NewHTTPAnalyzer(endpoint string) Analyzer {
	return &httpAnalyzer{endpoint: endpoint, client: http.DefaultClient}
}

type httpRequest struct {
	SessionID   string `json:"session_id,omitempty"`
	MediaBase64 string `json:"media_base64"`
	MimeType    string `json:"mime_type"`
}

func (a *httpAnalyzer) Analyze(ctx context.Context, req Request) (mood.AnalysisResult, error) {
	payload := httpRequest{
		SessionID:   req.SessionID,
		MediaBase64: base64.StdEncoding.EncodeToString(req.Media),
		MimeType:    req.MimeType,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return mood.AnalysisResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return mood.AnalysisResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return mood.AnalysisResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return mood.AnalysisResult{}, fmt.Errorf("analysis endpoint returned status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return mood.AnalysisResult{}, err
	}
	var result mood.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return mood.AnalysisResult{}, fmt.Errorf("decode analysis payload: %w", err)
	}
	return result, nil
}
