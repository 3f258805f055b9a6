package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/greenscanner/backend/config"
	"github.com/greenscanner/backend/internal/domain"
	"github.com/greenscanner/backend/internal/infrastructure/estimator"
	"github.com/greenscanner/backend/internal/infrastructure/openfoodfacts"
	"github.com/greenscanner/backend/internal/infrastructure/websearch"
	"github.com/greenscanner/backend/internal/usecase"
)

// buildService wires the gateways into the lookup pipeline
func buildService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*usecase.SustainabilityService, error) {
	offClient := openfoodfacts.NewClient(openfoodfacts.ClientConfig{
		BaseURL:           cfg.OpenFoodFacts.BaseURL,
		UserAgent:         cfg.OpenFoodFacts.UserAgent,
		Timeout:           cfg.OpenFoodFacts.Timeout,
		MaxAttempts:       cfg.OpenFoodFacts.MaxAttempts,
		RequestsPerMinute: cfg.OpenFoodFacts.RequestsPerMinute,
	}, logger)
	logger.Info("Open Food Facts configured", zap.String("base_url", cfg.OpenFoodFacts.BaseURL))

	webClient := websearch.NewClient(websearch.ClientConfig{
		APIKey:            cfg.WebSearch.APIKey,
		BaseURL:           cfg.WebSearch.BaseURL,
		Timeout:           cfg.WebSearch.Timeout,
		RequestsPerSecond: cfg.WebSearch.RequestsPerSecond,
	}, logger)
	if cfg.WebSearch.APIKey == "" {
		logger.Warn("web search key not configured, estimates will not use web evidence")
	}

	generator, err := estimator.NewGenerator(ctx, estimator.GeneratorConfig{
		Provider: cfg.Estimator.Provider,
		APIKey:   cfg.Estimator.APIKey,
		Model:    cfg.Estimator.Model,
	})
	if errors.Is(err, domain.ErrMissingCredential) {
		logger.Warn("estimator key not configured", zap.Error(err))
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create estimator: %w", err)
	}
	estimatorService := estimator.NewService(generator, cfg.Estimator.Timeout, logger)
	if estimatorService.Enabled() {
		logger.Info("estimator configured",
			zap.String("provider", cfg.Estimator.Provider),
			zap.String("model", generator.ModelName()))
	} else {
		logger.Warn("estimator disabled, missing fields will stay unknown",
			zap.String("provider", cfg.Estimator.Provider))
	}

	return usecase.NewSustainabilityService(
		offClient,
		webClient,
		estimatorService,
		logger,
		usecase.SustainabilityServiceConfig{
			MaxAlternatives:    cfg.Pipeline.MaxAlternatives,
			MinAlternatives:    cfg.Pipeline.MinAlternatives,
			IncludeDiagnostics: cfg.Pipeline.IncludeDiagnostics,
		},
	), nil
}
