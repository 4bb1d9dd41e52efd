package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	"github.com/bloomlabs/bloom-core/internal/mood"
	shellwords "github.com/mattn/go-shellwords"
)

type execAnalyzer struct {
	cmd []string
	mu  sync.Mutex
}

type execRequest struct {
	SessionID   string `json:"session_id,omitempty"`
	MediaBase64 string `json:"media_base64"`
	MimeType    string `json:"mime_type"`
}

// NewExecAnalyzer runs a configured command per request: JSON request on
// stdin, AnalysisResult JSON on stdout.
func NewExecAnalyzer(command string) (Analyzer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse analysis command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("analysis command empty")
	}
	return &execAnalyzer{cmd: args}, nil
}

func (a *execAnalyzer) Analyze(ctx context.Context, req Request) (mood.AnalysisResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	payload := execRequest{
		SessionID:   req.SessionID,
		MediaBase64: base64.StdEncoding.EncodeToString(req.Media),
		MimeType:    req.MimeType,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return mood.AnalysisResult{}, err
	}

	base := a.cmd[0]
	args := append([]string{}, a.cmd[1:]...)
	cmd := exec.CommandContext(ctx, base, args...)
	cmd.Stdin = bytes.NewReader(data)

	out, err := cmd.Output()
	if err != nil {
		return mood.AnalysisResult{}, fmt.Errorf("analysis command failed: %w", err)
	}

	var result mood.AnalysisResult
	if err := json.Unmarshal(bytes.TrimSpace(out), &result); err != nil {
		return mood.AnalysisResult{}, fmt.Errorf("decode analysis output: %w", err)
	}
	return result, nil
}
