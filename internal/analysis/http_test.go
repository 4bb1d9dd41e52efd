package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPAnalyzer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/analyze" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req httpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.MimeType != "audio/webm" {
			t.Fatalf("unexpected mime type %q", req.MimeType)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"emotion": "hope",
			"empathySummary": "There is light in what you shared.",
			"copingPlan": ["a", "b", "c"],
			"flowerConfig": {"baseColor": "#ffcc00", "intensity": 6, "bloomSpeed": 3, "style": "particle"},
			"affirmationText": "Keep going.",
			"distressScore": 0.2
		}`))
	}))
	defer srv.Close()

	a := NewHTTPAnalyzer(srv.URL)
	result, err := a.Analyze(context.Background(), Request{Media: []byte{1, 2, 3}, MimeType: "audio/webm"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Emotion != "hope" {
		t.Fatalf("unexpected emotion %q", result.Emotion)
	}
	if err := result.Validate(); err != nil {
		t.Fatalf("expected valid payload: %v", err)
	}
}

func TestHTTPAnalyzerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := NewHTTPAnalyzer(srv.URL)
	if _, err := a.Analyze(context.Background(), Request{Media: []byte{1}}); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestHTTPAnalyzerMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	a := NewHTTPAnalyzer(srv.URL)
	if _, err := a.Analyze(context.Background(), Request{Media: []byte{1}}); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestMockAnalyzerProducesValidResult(t *testing.T) {
	a := NewMockAnalyzer()
	result, err := a.Analyze(context.Background(), Request{Media: make([]byte, 17)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := result.Validate(); err != nil {
		t.Fatalf("mock result must pass validation: %v", err)
	}
}
