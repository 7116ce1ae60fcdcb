package main

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/parentstudy/internal/bootstrap"
	"github.com/at-ishikawa/parentstudy/internal/config"
	"github.com/at-ishikawa/parentstudy/internal/tutor"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newTutorService loads the configuration and connects to the configured provider.
// The returned function releases the provider client.
func newTutorService() (*tutor.Service, *config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	client, closeClient, err := bootstrap.NewInferenceClient(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("bootstrap.NewInferenceClient() > %w", err)
	}
	release := func() {
		_ = closeClient(context.Background())
	}
	return tutor.NewService(client, cfg.Worksheet.QuestionCount), cfg, release, nil
}
