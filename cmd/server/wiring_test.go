package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/greenscanner/backend/config"
)

func testConfig(provider, apiKey string) *config.Config {
	return &config.Config{
		OpenFoodFacts: config.OpenFoodFactsConfig{BaseURL: "https://world.openfoodfacts.org"},
		Estimator:     config.EstimatorConfig{Provider: provider, APIKey: apiKey},
		Pipeline:      config.PipelineConfig{MaxAlternatives: 6, MinAlternatives: 3},
	}
}

func TestBuildService(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		apiKey      string
		wantErr     bool
		wantMessage string
		wantLevel   zapcore.Level
	}{
		{name: "estimator disabled", provider: "none", wantMessage: "estimator disabled, missing fields will stay unknown", wantLevel: zapcore.WarnLevel},
		{name: "missing estimator key", provider: "gemini", wantMessage: "estimator key not configured", wantLevel: zapcore.WarnLevel},
		{name: "anthropic configured", provider: "anthropic", apiKey: "test-key", wantMessage: "estimator configured", wantLevel: zapcore.InfoLevel},
		{name: "unknown provider", provider: "oracle", apiKey: "test-key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)

			svc, err := buildService(context.Background(), testConfig(tt.provider, tt.apiKey), zap.New(core))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)

			entries := logs.FilterMessage(tt.wantMessage).All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0].Level)
		})
	}
}

func TestBuildService_MissingKeyStillRuns(t *testing.T) {
	svc, err := buildService(context.Background(), testConfig("anthropic", ""), zap.NewNop())
	require.NoError(t, err)

	// no estimator and no database access needed for an empty lookup
	result, err := svc.Resolve(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", result.Product.Name)
	assert.True(t, result.Product.DetailsEstimated)
}
