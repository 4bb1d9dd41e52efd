package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	shellwords "github.com/mattn/go-shellwords"
)

type execSynth struct {
	cmd        []string
	sampleRate int
	mu         sync.Mutex
}

type execRequest struct {
	Text       string `json:"text"`
	Voice      string `json:"voice,omitempty"`
	SampleRate int    `json:"sample_rate"`
}

type execResponse struct {
	PCMBase64 string `json:"pcm_base64"`
}

// NewExecSynth runs a configured command per request: JSON request on
// stdin, base64 PCM JSON on stdout.
func NewExecSynth(command string, sampleRate int) (Synthesizer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse speech command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("speech command empty")
	}
	return &execSynth{cmd: args, sampleRate: sampleRate}, nil
}

func (s *execSynth) Synthesize(ctx context.Context, req SynthRequest) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(execRequest{Text: req.Text, Voice: req.Voice, SampleRate: s.sampleRate})
	if err != nil {
		return nil, err
	}

	base := s.cmd[0]
	args := append([]string{}, s.cmd[1:]...)
	cmd := exec.CommandContext(ctx, base, args...)
	cmd.Stdin = bytes.NewReader(data)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("speech command failed: %w", err)
	}

	var decoded execResponse
	if err := json.Unmarshal(bytes.TrimSpace(out), &decoded); err != nil {
		return nil, fmt.Errorf("decode speech output: %w", err)
	}
	pcm, err := base64.StdEncoding.DecodeString(decoded.PCMBase64)
	if err != nil {
		return nil, fmt.Errorf("decode speech pcm: %w", err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("speech command returned no audio")
	}
	return pcm, nil
}
