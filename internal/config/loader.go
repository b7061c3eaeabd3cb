package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds client parameters. Zero values mean "unspecified" and fall
// back to defaults applied by the consumer.
type Config struct {
	// ServerURL is the tensor-serving inference server address.
	ServerURL string `json:"server_url" yaml:"server_url" toml:"server_url"`
	// Model is the server-side model name.
	Model string `json:"model" yaml:"model" toml:"model"`
	// TakeoffURL is the base URL of the simpler HTTP generation server.
	TakeoffURL string `json:"takeoff_url" yaml:"takeoff_url" toml:"takeoff_url"`
	// LoadTimeoutSec bounds the readiness wait after a load request.
	LoadTimeoutSec int `json:"load_timeout_sec" yaml:"load_timeout_sec" toml:"load_timeout_sec"`
	// PollIntervalMS is the sleep between readiness probes.
	PollIntervalMS int `json:"poll_interval_ms" yaml:"poll_interval_ms" toml:"poll_interval_ms"`
	// QueueDepth is the per-stream token queue capacity.
	QueueDepth int `json:"queue_depth" yaml:"queue_depth" toml:"queue_depth"`
	// ForceBatch applies batch trimming to streamed fragments.
	ForceBatch bool `json:"force_batch" yaml:"force_batch" toml:"force_batch"`
	// StopWords end generation on exact fragment match.
	StopWords []string `json:"stop_words" yaml:"stop_words" toml:"stop_words"`
	// MaxTokens caps generated tokens per request.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	// Temperature is the default sampling temperature.
	Temperature float32 `json:"temperature" yaml:"temperature" toml:"temperature"`
	// LogLevel is one of debug|info|warn|error.
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// FromEnv overlays TRTBRIDGE_* environment variables onto cfg. Unset or
// unparsable variables leave the existing value in place.
func FromEnv(cfg Config) Config {
	if v := os.Getenv("TRTBRIDGE_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("TRTBRIDGE_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("TRTBRIDGE_TAKEOFF_URL"); v != "" {
		cfg.TakeoffURL = v
	}
	if v := os.Getenv("TRTBRIDGE_LOAD_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LoadTimeoutSec = n
		}
	}
	if v := os.Getenv("TRTBRIDGE_POLL_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PollIntervalMS = n
		}
	}
	if v := os.Getenv("TRTBRIDGE_QUEUE_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueDepth = n
		}
	}
	if v := os.Getenv("TRTBRIDGE_FORCE_BATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ForceBatch = b
		}
	}
	if v := os.Getenv("TRTBRIDGE_STOP_WORDS"); v != "" {
		var words []string
		for _, w := range strings.Split(v, ",") {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		if len(words) > 0 {
			cfg.StopWords = words
		}
	}
	if v := os.Getenv("TRTBRIDGE_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("TRTBRIDGE_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Temperature = float32(f)
		}
	}
	if v := os.Getenv("TRTBRIDGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}
