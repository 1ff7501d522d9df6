package stubllm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"letter-simplify-service/models"
)

// Simplifier is a deterministic, no-network stand-in for the simplification
// provider, intended for CI and local end-to-end tests. It returns
// schema-valid JSON already parsed into a SimplifiedResult so downstream
// merging and persistence exercise the full pipeline.
type Simplifier struct {
	// Err, when set, is returned by every call.
	Err error
	// KeyPoints overrides the default key points when non-nil.
	KeyPoints []string
	// Calls counts invocations across both entry points.
	Calls int
}

func (s *Simplifier) SourceName() string { return "Stub" }

func (s *Simplifier) Simplify(_ context.Context, text, language string) (models.SimplifiedResult, error) {
	s.Calls++
	if s.Err != nil {
		return models.SimplifiedResult{}, s.Err
	}
	return s.result(text, language), nil
}

func (s *Simplifier) SimplifyImage(_ context.Context, _ []byte, _ string, language string) (models.SimplifiedResult, error) {
	s.Calls++
	if s.Err != nil {
		return models.SimplifiedResult{}, s.Err
	}
	return s.result("", language), nil
}

func (s *Simplifier) result(text, language string) models.SimplifiedResult {
	keyPoints := s.KeyPoints
	if keyPoints == nil {
		keyPoints = []string{"You received an official letter", "No payment is required", "Keep this letter for your records"}
	}
	simplified := fmt.Sprintf("[%s] This letter says: %s", language, truncate(text, 120))
	return models.SimplifiedResult{
		Summary:          "A stubbed summary of the letter.",
		SimplifiedText:   simplified,
		ActionItems:      []string{"Nothing to do right now"},
		KeyPoints:        keyPoints,
		Tone:             models.ToneNeutral,
		OriginalLength:   len([]rune(text)),
		SimplifiedLength: len([]rune(simplified)),
	}
}

// Extractor is a no-network OCR stub.
type Extractor struct {
	Text  string
	Err   error
	Calls int
}

func (e *Extractor) SourceName() string { return "Stub" }

func (e *Extractor) ExtractText(_ context.Context, _ []byte, _ string) (string, error) {
	e.Calls++
	if e.Err != nil {
		return "", e.Err
	}
	return e.Text, nil
}

// Illustrator is a no-network image generation stub. FailFor marks key
// points whose generation should fail; EmptyFor marks key points whose
// reply carries no image part. It is safe for the concurrent fan-out the
// orchestrator performs.
type Illustrator struct {
	FailFor  map[string]bool
	EmptyFor map[string]bool

	mu    sync.Mutex
	calls int
}

func (i *Illustrator) SourceName() string { return "Stub" }

// Calls reports how many generation calls were made.
func (i *Illustrator) Calls() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls
}

func (i *Illustrator) GenerateIllustration(_ context.Context, keyPoint string) (string, error) {
	i.mu.Lock()
	i.calls++
	i.mu.Unlock()
	if i.FailFor[keyPoint] {
		return "", fmt.Errorf("stubbed generation failure for %q", keyPoint)
	}
	if i.EmptyFor[keyPoint] {
		return "", nil
	}
	// Deterministic per-key-point payload so tests can assert ordering.
	data := base64.StdEncoding.EncodeToString([]byte(keyPoint))
	return "data:image/png;base64," + data, nil
}

// MarshalResult is a helper for tests that need the raw JSON shape the real
// provider would return for a given result.
func MarshalResult(result models.SimplifiedResult) string {
	b, _ := json.Marshal(map[string]any{
		"summary":        result.Summary,
		"simplifiedText": result.SimplifiedText,
		"actionItems":    result.ActionItems,
		"keyPoints":      result.KeyPoints,
		"tone":           result.Tone,
	})
	return string(b)
}

// truncate cuts at rune boundaries so multi-byte text survives intact.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
