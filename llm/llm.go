package llm

import (
	"context"
	"errors"

	"letter-simplify-service/models"
)

// ErrNotConfigured is returned by providers when their API key is missing.
// Callers translate it into a configuration error so operators can tell a
// deployment problem apart from an upstream outage.
var ErrNotConfigured = errors.New("provider API key not configured")

// Simplifier abstracts the language-model provider that turns an official
// letter into a simplified explanation.
// Implementations must be concurrency-safe if used across goroutines.
type Simplifier interface {
	// Simplify rewrites raw letter text into a structured explanation in the
	// requested language ("en" or "he").
	Simplify(ctx context.Context, text, language string) (models.SimplifiedResult, error)
	// SimplifyImage reads and simplifies a photographed letter in a single
	// vision call; no separate OCR round-trip is made.
	SimplifyImage(ctx context.Context, imageData []byte, mimeType, language string) (models.SimplifiedResult, error)
	// SourceName returns a short provider label for logs and metrics.
	SourceName() string
}

// TextExtractor abstracts the OCR provider. An empty string is a valid
// result when the image contains no legible text.
type TextExtractor interface {
	ExtractText(ctx context.Context, imageData []byte, mimeType string) (string, error)
	SourceName() string
}

// Illustrator abstracts the image-generation provider. A call returns a
// base64 data URI, or "" with a nil error when the model produced no image.
type Illustrator interface {
	GenerateIllustration(ctx context.Context, keyPoint string) (string, error)
	SourceName() string
}
