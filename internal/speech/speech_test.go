package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMockSynthEmitsPCM(t *testing.T) {
	s := NewMockSynth(24000)
	pcm, err := s.Synthesize(context.Background(), SynthRequest{Text: "you are enough"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pcm) == 0 || len(pcm)%2 != 0 {
		t.Fatalf("expected even-length pcm, got %d bytes", len(pcm))
	}
}

func TestMockSynthRejectsEmptyText(t *testing.T) {
	s := NewMockSynth(24000)
	if _, err := s.Synthesize(context.Background(), SynthRequest{}); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestHTTPSynth(t *testing.T) {
	want := []byte{0x00, 0x00, 0x00, 0x40}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/speech" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req httpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.SampleRate != 24000 {
			t.Fatalf("unexpected sample rate %d", req.SampleRate)
		}
		_ = json.NewEncoder(w).Encode(httpResponse{PCMBase64: base64.StdEncoding.EncodeToString(want)})
	}))
	defer srv.Close()

	s := NewHTTPSynth(srv.URL, 24000)
	pcm, err := s.Synthesize(context.Background(), SynthRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pcm) != len(want) {
		t.Fatalf("expected %d bytes, got %d", len(want), len(pcm))
	}
}

func TestHTTPSynthRejectsEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(httpResponse{PCMBase64: ""})
	}))
	defer srv.Close()

	s := NewHTTPSynth(srv.URL, 24000)
	if _, err := s.Synthesize(context.Background(), SynthRequest{Text: "hello"}); err == nil {
		t.Fatal("expected error for empty audio payload")
	}
}
