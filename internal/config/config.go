package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel     string `yaml:"log_level"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type BusConfig struct {
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type CaptureConfig struct {
	Enabled        bool   `yaml:"enabled"`
	MaxDurationSec int    `yaml:"max_duration_sec"`
	MaxMediaBytes  int    `yaml:"max_media_bytes"`
	DefaultKind    string `yaml:"default_kind"`
}

type AnalysisConfig struct {
	Mode      string `yaml:"mode"` // mock, http, exec
	Endpoint  string `yaml:"endpoint"`
	Command   string `yaml:"command"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

type SpeechConfig struct {
	Mode       string `yaml:"mode"` // mock, http, exec
	Endpoint   string `yaml:"endpoint"`
	Command    string `yaml:"command"`
	Voice      string `yaml:"voice"`
	SampleRate int    `yaml:"sample_rate"`
	TimeoutMS  int    `yaml:"timeout_ms"`
}

type SessionStoreConfig struct {
	Path          string `yaml:"path"`
	RetentionMode string `yaml:"retention_mode"`
	RetentionDays int    `yaml:"retention_days"`
	MaxSessions   int    `yaml:"max_sessions"`
}

type Config struct {
	RuntimeName  string             `yaml:"runtime_name"`
	Environment  string             `yaml:"environment"`
	HTTP         HTTPConfig         `yaml:"http"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Bus          BusConfig          `yaml:"bus"`
	Capture      CaptureConfig      `yaml:"capture"`
	Analysis     AnalysisConfig     `yaml:"analysis"`
	Speech       SpeechConfig       `yaml:"speech"`
	SessionStore SessionStoreConfig `yaml:"session_store"`
}

func Default() Config {
	return Config{
		RuntimeName: "bloom-runtime",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Telemetry: TelemetryConfig{
			LogLevel:     "info",
			OTLPEndpoint: "",
			OTLPInsecure: true,
		},
		Bus: BusConfig{
			Embedded:       true,
			Port:           4222,
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		Capture: CaptureConfig{
			Enabled:        true,
			MaxDurationSec: 30,
			MaxMediaBytes:  16 << 20,
			DefaultKind:    "audio",
		},
		Analysis: AnalysisConfig{
			Mode:      "mock",
			TimeoutMS: 45000,
		},
		Speech: SpeechConfig{
			Mode:       "mock",
			Voice:      "warm",
			SampleRate: 24000,
			TimeoutMS:  45000,
		},
		SessionStore: SessionStoreConfig{
			Path:          "./data/bloom-sessions.db",
			RetentionMode: "session",
			RetentionDays: 30,
			MaxSessions:   10000,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.RuntimeName, "BLOOM_RUNTIME_NAME")
	overrideString(&cfg.Environment, "BLOOM_RUNTIME_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "BLOOM_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "BLOOM_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "BLOOM_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "BLOOM_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "BLOOM_TELEMETRY_OTLP_INSECURE")
	overrideBool(&cfg.Bus.Embedded, "BLOOM_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "BLOOM_BUS_PORT")
	overrideStringSlice(&cfg.Bus.Servers, "BLOOM_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "BLOOM_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "BLOOM_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "BLOOM_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "BLOOM_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "BLOOM_BUS_CONNECT_TIMEOUT_MS")
	overrideBool(&cfg.Capture.Enabled, "BLOOM_CAPTURE_ENABLED")
	overrideInt(&cfg.Capture.MaxDurationSec, "BLOOM_CAPTURE_MAX_DURATION_SEC")
	overrideInt(&cfg.Capture.MaxMediaBytes, "BLOOM_CAPTURE_MAX_MEDIA_BYTES")
	overrideString(&cfg.Capture.DefaultKind, "BLOOM_CAPTURE_DEFAULT_KIND")
	overrideString(&cfg.Analysis.Mode, "BLOOM_ANALYSIS_MODE")
	overrideString(&cfg.Analysis.Endpoint, "BLOOM_ANALYSIS_ENDPOINT")
	overrideString(&cfg.Analysis.Command, "BLOOM_ANALYSIS_COMMAND")
	overrideInt(&cfg.Analysis.TimeoutMS, "BLOOM_ANALYSIS_TIMEOUT_MS")
	overrideString(&cfg.Speech.Mode, "BLOOM_SPEECH_MODE")
	overrideString(&cfg.Speech.Endpoint, "BLOOM_SPEECH_ENDPOINT")
	overrideString(&cfg.Speech.Command, "BLOOM_SPEECH_COMMAND")
	overrideString(&cfg.Speech.Voice, "BLOOM_SPEECH_VOICE")
	overrideInt(&cfg.Speech.SampleRate, "BLOOM_SPEECH_SAMPLE_RATE")
	overrideInt(&cfg.Speech.TimeoutMS, "BLOOM_SPEECH_TIMEOUT_MS")
	overrideString(&cfg.SessionStore.Path, "BLOOM_SESSION_STORE_PATH")
	overrideString(&cfg.SessionStore.RetentionMode, "BLOOM_SESSION_STORE_RETENTION_MODE")
	overrideInt(&cfg.SessionStore.RetentionDays, "BLOOM_SESSION_STORE_RETENTION_DAYS")
	overrideInt(&cfg.SessionStore.MaxSessions, "BLOOM_SESSION_STORE_MAX_SESSIONS")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.RuntimeName == "" {
		return errors.New("runtime_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.Bus.Embedded {
		if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
			return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
		}
	} else {
		if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when embedded mode is disabled")
		}
	}
	if cfg.Capture.Enabled {
		if cfg.Capture.MaxDurationSec <= 0 {
			return errors.New("capture.max_duration_sec must be positive")
		}
		if cfg.Capture.MaxMediaBytes <= 0 {
			return errors.New("capture.max_media_bytes must be positive")
		}
		switch cfg.Capture.DefaultKind {
		case "audio", "video":
		default:
			return errors.New("capture.default_kind must be one of audio|video")
		}
	}
	switch cfg.Analysis.Mode {
	case "mock", "http", "exec":
	default:
		return errors.New("analysis.mode must be one of mock|http|exec")
	}
	if cfg.Analysis.Mode == "http" && cfg.Analysis.Endpoint == "" {
		return errors.New("analysis.endpoint must be set when mode=http")
	}
	if cfg.Analysis.Mode == "exec" && cfg.Analysis.Command == "" {
		return errors.New("analysis.command must be set when mode=exec")
	}
	switch cfg.Speech.Mode {
	case "mock", "http", "exec":
	default:
		return errors.New("speech.mode must be one of mock|http|exec")
	}
	if cfg.Speech.Mode == "http" && cfg.Speech.Endpoint == "" {
		return errors.New("speech.endpoint must be set when mode=http")
	}
	if cfg.Speech.Mode == "exec" && cfg.Speech.Command == "" {
		return errors.New("speech.command must be set when mode=exec")
	}
	if cfg.Speech.SampleRate <= 0 {
		return errors.New("speech.sample_rate must be positive")
	}
	if cfg.SessionStore.Path == "" {
		return errors.New("session_store.path must not be empty")
	}
	switch cfg.SessionStore.RetentionMode {
	case "ephemeral", "session", "persistent":
		// ok
	default:
		return errors.New("session_store.retention_mode must be one of ephemeral|session|persistent")
	}
	if cfg.SessionStore.RetentionDays < 0 {
		return errors.New("session_store.retention_days must be >= 0")
	}
	return nil
}
