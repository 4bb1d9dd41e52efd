package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bus.Servers[0] != "nats://localhost:4222" {
		t.Fatalf("expected default server, got %v", cfg.Bus.Servers)
	}
	if cfg.Speech.SampleRate != 24000 {
		t.Fatalf("expected 24 kHz speech default, got %d", cfg.Speech.SampleRate)
	}
	if cfg.Capture.MaxDurationSec != 30 {
		t.Fatalf("expected 30s capture bound, got %d", cfg.Capture.MaxDurationSec)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BLOOM_BUS_SERVERS", "nats://one:4222, nats://two:4222")
	t.Setenv("BLOOM_BUS_USERNAME", "alice")
	t.Setenv("BLOOM_BUS_PASSWORD", "secret")
	t.Setenv("BLOOM_ANALYSIS_MODE", "http")
	t.Setenv("BLOOM_ANALYSIS_ENDPOINT", "http://analysis:9000")
	t.Setenv("BLOOM_SPEECH_MODE", "http")
	t.Setenv("BLOOM_SPEECH_ENDPOINT", "http://speech:9001")
	t.Setenv("BLOOM_SPEECH_VOICE", "gentle")
	t.Setenv("BLOOM_CAPTURE_MAX_DURATION_SEC", "45")
	t.Setenv("BLOOM_SESSION_STORE_PATH", "./tmp.db")
	t.Setenv("BLOOM_SESSION_STORE_RETENTION_MODE", "persistent")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Bus.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %v", cfg.Bus.Servers)
	}
	if cfg.Bus.Username != "alice" || cfg.Bus.Password != "secret" {
		t.Fatalf("expected credentials override")
	}
	if cfg.Analysis.Mode != "http" || cfg.Analysis.Endpoint != "http://analysis:9000" {
		t.Fatalf("expected analysis override, got %+v", cfg.Analysis)
	}
	if cfg.Speech.Voice != "gentle" {
		t.Fatalf("expected voice override, got %q", cfg.Speech.Voice)
	}
	if cfg.Capture.MaxDurationSec != 45 {
		t.Fatalf("expected capture duration override, got %d", cfg.Capture.MaxDurationSec)
	}
	if cfg.SessionStore.Path != "./tmp.db" {
		t.Fatalf("expected session store path override")
	}
	if cfg.SessionStore.RetentionMode != "persistent" {
		t.Fatalf("expected session store retention mode override")
	}
}

func TestValidateRejectsUnknownModes(t *testing.T) {
	t.Setenv("BLOOM_ANALYSIS_MODE", "telepathy")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unknown analysis mode")
	}
}

func TestValidateRequiresEndpointForHTTP(t *testing.T) {
	t.Setenv("BLOOM_SPEECH_MODE", "http")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for http mode without endpoint")
	}
}
