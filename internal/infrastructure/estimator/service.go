package estimator

import (
	"context"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/greenscanner/backend/internal/domain"
)

const defaultTimeout = 6 * time.Second

// Service implements domain.Estimator on top of a Generator. Every failure
// (no generator, bad image, timeout, malformed output) yields nil.
type Service struct {
	generator Generator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewService creates an estimator. A nil generator disables estimation.
func NewService(generator Generator, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		generator: generator,
		timeout:   timeout,
		logger:    logger.Named("estimator"),
	}
}

// Enabled reports whether a model provider is configured
func (s *Service) Enabled() bool {
	return s.generator != nil
}

// IdentifyFromImage asks the model to name the product shown in imageData
func (s *Service) IdentifyFromImage(ctx context.Context, imageData string) *domain.ImageIdentification {
	if s.generator == nil || imageData == "" {
		return nil
	}
	image, err := ParseDataURL(imageData)
	if err != nil {
		s.logger.Warn("cannot identify product: unreadable image", zap.Error(err))
		return nil
	}

	payload, err := s.generate(ctx, Request{
		System: identifySystemPrompt,
		Prompt: identifyUserPrompt,
		Image:  image,
		Schema: identificationSchema,
	})
	if err != nil {
		s.logger.Warn("image identification failed", zap.Error(err))
		return nil
	}

	return &domain.ImageIdentification{
		Name:  stringField(payload, "name"),
		Brand: stringField(payload, "brand"),
	}
}

// Estimate asks the model to fill every product field for name, using web
// snippets and the image as optional evidence
func (s *Service) Estimate(ctx context.Context, name string, webResults []domain.WebResult, imageData string) *domain.EstimationResult {
	if s.generator == nil {
		return nil
	}

	var image *InlineImage
	if imageData != "" {
		img, err := ParseDataURL(imageData)
		if err != nil {
			s.logger.Debug("estimating without image", zap.Error(err))
		} else {
			image = img
		}
	}

	payload, err := s.generate(ctx, Request{
		System: estimateSystemPrompt,
		Prompt: estimatePrompt(name, webResults),
		Image:  image,
		Schema: estimateSchema,
	})
	if err != nil {
		s.logger.Warn("estimation failed", zap.String("name", name), zap.Error(err))
		return nil
	}

	return &domain.EstimationResult{
		Name:        stringField(payload, "name"),
		Brand:       stringField(payload, "brand"),
		Categories:  stringField(payload, "categories"),
		Packaging:   stringField(payload, "packaging"),
		Labels:      stringField(payload, "labels"),
		Ingredients: stringField(payload, "ingredients"),
		Ecoscore:    stringField(payload, "ecoscore"),
		Nutriscore:  stringField(payload, "nutriscore"),
		ImageURL:    stringField(payload, "imageUrl"),
	}
}

func (s *Service) generate(ctx context.Context, req Request) (gjson.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	out, err := s.generator.Generate(ctx, req)
	if err != nil {
		return gjson.Result{}, err
	}
	s.logger.Debug("model answered",
		zap.String("schema", req.Schema.Name),
		zap.String("model", s.generator.ModelName()),
		zap.Duration("elapsed", time.Since(start)))
	return ParseStructured(out)
}
