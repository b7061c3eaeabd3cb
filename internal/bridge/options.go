package bridge

import (
	"time"

	"github.com/rs/zerolog"

	"trtbridge/internal/config"
	"trtbridge/pkg/types"
)

// OptionsFromConfig maps loaded configuration onto client options. Zero or
// unset config values stay zero and pick up the package defaults in New.
func OptionsFromConfig(cfg config.Config, logger *zerolog.Logger) Options {
	return Options{
		Model:        cfg.Model,
		LoadTimeout:  time.Duration(cfg.LoadTimeoutSec) * time.Second,
		PollInterval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
		QueueDepth:   cfg.QueueDepth,
		ForceBatch:   cfg.ForceBatch,
		Logger:       logger,
	}
}

// ParametersFromConfig returns generation parameters seeded from the
// defaults and overridden by the configured values where set.
func ParametersFromConfig(cfg config.Config) types.GenerationParameters {
	p := types.DefaultParameters()
	if cfg.MaxTokens > 0 {
		p.MaxTokens = cfg.MaxTokens
	}
	if cfg.Temperature > 0 {
		p.Temperature = cfg.Temperature
	}
	if len(cfg.StopWords) > 0 {
		p.StopWords = cfg.StopWords
	}
	return p
}
