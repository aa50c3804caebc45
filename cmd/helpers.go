package cmd

import (
	"context"
	"fmt"

	"github.com/hdtinh57/smartdocqa/internal/config"
	"github.com/hdtinh57/smartdocqa/internal/pipeline"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newPipeline loads the config and wires the full pipeline.
func newPipeline(ctx context.Context) (*pipeline.Pipeline, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}
