package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"letter-simplify-service/config"
	"letter-simplify-service/llm"
	"letter-simplify-service/metrics"
	"letter-simplify-service/models"
	"letter-simplify-service/parallel"
	"letter-simplify-service/rabbitmq"
	"letter-simplify-service/storage"

	"github.com/apex/log"
)

// MinLetterLength is the minimum trimmed length of pasted letter text.
const MinLetterLength = 10

// Service orchestrates the simplify flows: validate input, call the
// simplification provider, fan out illustration generation, merge the
// result. Illustration failures degrade the response, never fail it.
type Service struct {
	cfg         *config.Config
	simplifier  llm.Simplifier
	extractor   llm.TextExtractor
	illustrator llm.Illustrator
	store       storage.Store
	publisher   *rabbitmq.Publisher
}

// New creates the orchestrator. store and publisher are optional; a nil
// publisher disables event publishing.
func New(cfg *config.Config, simplifier llm.Simplifier, extractor llm.TextExtractor, illustrator llm.Illustrator, store storage.Store, publisher *rabbitmq.Publisher) *Service {
	return &Service{
		cfg:         cfg,
		simplifier:  simplifier,
		extractor:   extractor,
		illustrator: illustrator,
		store:       store,
		publisher:   publisher,
	}
}

// HandleText runs the text flow: validate, simplify, illustrate, merge.
func (s *Service) HandleText(ctx context.Context, text, language string) (models.ResponseEnvelope, error) {
	language = models.ResolveLanguage(language)

	if len([]rune(strings.TrimSpace(text))) < MinLetterLength {
		return models.ResponseEnvelope{}, &ValidationError{
			Reason: "Please provide at least 10 characters of text",
		}
	}

	result, err := s.simplify(ctx, func(callCtx context.Context) (models.SimplifiedResult, error) {
		return s.simplifier.Simplify(callCtx, text, language)
	}, "simplify")
	if err != nil {
		return models.ResponseEnvelope{}, err
	}

	envelope := models.ResponseEnvelope{
		Result: result,
		Images: s.generateIllustrations(ctx, result.KeyPoints),
	}

	s.persist(text, result, language)
	return envelope, nil
}

// HandleImage runs the photo flow. A single vision call both reads and
// simplifies the letter; no separate OCR round-trip is made. The original
// text length is unknown here, so the result reports zero.
func (s *Service) HandleImage(ctx context.Context, imageData []byte, mimeType, language string) (models.ResponseEnvelope, error) {
	language = models.ResolveLanguage(language)

	if !models.AllowedImageMimeTypes[mimeType] {
		return models.ResponseEnvelope{}, &UnsupportedMediaError{MimeType: mimeType}
	}

	result, err := s.simplify(ctx, func(callCtx context.Context) (models.SimplifiedResult, error) {
		return s.simplifier.SimplifyImage(callCtx, imageData, mimeType, language)
	}, "simplify_image")
	if err != nil {
		return models.ResponseEnvelope{}, err
	}
	result.OriginalLength = 0

	envelope := models.ResponseEnvelope{
		Result: result,
		Images: s.generateIllustrations(ctx, result.KeyPoints),
	}

	s.persist("", result, language)
	return envelope, nil
}

// ExtractText is the OCR-only entry point. An empty transcription is a
// valid result, distinct from a failed call.
func (s *Service) ExtractText(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	if !models.AllowedImageMimeTypes[mimeType] {
		return "", &UnsupportedMediaError{MimeType: mimeType}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	text, err := s.extractor.ExtractText(callCtx, imageData, mimeType)
	metrics.UpstreamDurationSeconds.WithLabelValues(s.extractor.SourceName(), "ocr").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(s.extractor.SourceName(), "ocr", "error").Inc()
		if errors.Is(err, llm.ErrNotConfigured) {
			return "", &ConfigurationError{Provider: "OCR", Err: err}
		}
		log.Errorf("OCR call failed: %v", err)
		return "", &UpstreamError{Provider: s.extractor.SourceName(), Err: err}
	}
	metrics.UpstreamCallsTotal.WithLabelValues(s.extractor.SourceName(), "ocr", "ok").Inc()

	return strings.TrimSpace(text), nil
}

// simplify wraps the primary provider call with a timeout, metrics and the
// error taxonomy. The summary is the primary artifact: any failure here
// fails the whole request.
func (s *Service) simplify(ctx context.Context, call func(context.Context) (models.SimplifiedResult, error), operation string) (models.SimplifiedResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	result, err := call(callCtx)
	metrics.UpstreamDurationSeconds.WithLabelValues(s.simplifier.SourceName(), operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(s.simplifier.SourceName(), operation, "error").Inc()
		if errors.Is(err, llm.ErrNotConfigured) {
			return models.SimplifiedResult{}, &ConfigurationError{Provider: "Simplification", Err: err}
		}
		log.Errorf("Simplification call failed: %v", err)
		return models.SimplifiedResult{}, &UpstreamError{Provider: s.simplifier.SourceName(), Err: err}
	}
	metrics.UpstreamCallsTotal.WithLabelValues(s.simplifier.SourceName(), operation, "ok").Inc()

	return result, nil
}

// generateIllustrations fans out one generation call per key point, capped
// at MaxIllustrations, and collects whatever succeeded in key-point order.
// Failures are logged and swallowed; the caller always gets a usable slice.
func (s *Service) generateIllustrations(ctx context.Context, keyPoints []string) []string {
	images := []string{}
	if s.illustrator == nil || len(keyPoints) == 0 {
		return images
	}

	results, errs := parallel.MapPartial(ctx, keyPoints, s.cfg.MaxIllustrations, func(fanCtx context.Context, keyPoint string) (string, error) {
		callCtx, cancel := context.WithTimeout(fanCtx, s.cfg.RequestTimeout)
		defer cancel()
		return s.illustrator.GenerateIllustration(callCtx, keyPoint)
	})

	for i, err := range errs {
		if err != nil {
			metrics.IllustrationsFailedTotal.Inc()
			log.Errorf("Failed to generate illustration for key point %d: %v", i, err)
		}
	}

	for _, img := range results {
		if img == "" {
			// The model answered without an image part; contributes nothing.
			metrics.IllustrationsFailedTotal.Inc()
			continue
		}
		metrics.IllustrationsGeneratedTotal.Inc()
		images = append(images, img)
	}
	return images
}

// persist saves the explanation and publishes the event off the hot path.
// Both are best-effort; failures are logged and never surfaced to callers.
func (s *Service) persist(originalText string, result models.SimplifiedResult, language string) {
	if s.store == nil && s.publisher == nil {
		return
	}

	exp := models.Explanation{
		OriginalText:   originalText,
		SimplifiedText: result.SimplifiedText,
		Summary:        result.Summary,
		ActionItems:    result.ActionItems,
		KeyPoints:      result.KeyPoints,
		Tone:           result.Tone,
		Language:       language,
	}

	go func() {
		if s.store != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := s.store.SaveExplanation(ctx, &exp); err != nil {
				log.Errorf("Failed to save explanation: %v", err)
			}
		}
		if s.publisher != nil {
			if err := s.publisher.Publish(exp); err != nil {
				log.Errorf("Failed to publish explanation: %v", err)
			}
		}
	}()
}

// GetExplanation returns a stored explanation, or nil when the id is
// unknown or no store is configured.
func (s *Service) GetExplanation(ctx context.Context, id int64) (*models.Explanation, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.GetExplanation(ctx, id)
}
