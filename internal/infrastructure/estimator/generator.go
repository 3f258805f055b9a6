package estimator

import (
	"context"
	"fmt"
	"strings"

	"github.com/greenscanner/backend/internal/domain"
)

// Supported model providers
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// Schema names a flat JSON object whose properties are all required strings
type Schema struct {
	Name       string
	Properties []string
}

// Request is one structured generation call
type Request struct {
	System string
	Prompt string
	// Image is optional; a nil image sends a text-only request
	Image  *InlineImage
	Schema Schema
}

// Output carries whatever the model returned. Texts holds every text part in
// order; Object holds arguments the provider already decoded, if any.
type Output struct {
	Texts  []string
	Object map[string]any
}

// Generator runs a schema-constrained generation against one provider
type Generator interface {
	Generate(ctx context.Context, req Request) (*Output, error)
	ModelName() string
}

// GeneratorConfig selects and configures a provider
type GeneratorConfig struct {
	Provider string
	APIKey   string
	Model    string
}

// NewGenerator builds the configured provider. It returns a nil Generator and
// nil error when estimation is disabled, and domain.ErrMissingCredential when
// a provider is selected without an API key.
func NewGenerator(ctx context.Context, config GeneratorConfig) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))
	if provider == "" || provider == ProviderNone {
		return nil, nil
	}
	if provider != ProviderGemini && provider != ProviderAnthropic {
		return nil, fmt.Errorf("unknown estimator provider %q", config.Provider)
	}
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("estimator provider %s: %w", provider, domain.ErrMissingCredential)
	}
	switch provider {
	case ProviderGemini:
		g, err := NewGeminiGenerator(ctx, config.APIKey, config.Model)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderAnthropic:
		return NewAnthropicGenerator(config.APIKey, config.Model), nil
	default:
		return nil, fmt.Errorf("unknown estimator provider %q", config.Provider)
	}
}
