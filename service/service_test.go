package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"letter-simplify-service/config"
	"letter-simplify-service/llm"
	"letter-simplify-service/models"
	"letter-simplify-service/stubllm"

	"github.com/stretchr/testify/assert"
)

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout:   5 * time.Second,
		MaxIllustrations: 3,
	}
}

func dataURI(keyPoint string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(keyPoint))
}

func TestHandleText_ShortInputFailsBeforeAnyUpstreamCall(t *testing.T) {
	simp := &stubllm.Simplifier{}
	ill := &stubllm.Illustrator{}
	svc := New(testConfig(), simp, &stubllm.Extractor{}, ill, nil, nil)

	_, err := svc.HandleText(context.Background(), "too short", "en")

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, simp.Calls)
	assert.Equal(t, 0, ill.Calls())
}

func TestHandleText_WhitespacePaddingDoesNotCountTowardMinimum(t *testing.T) {
	simp := &stubllm.Simplifier{}
	svc := New(testConfig(), simp, &stubllm.Extractor{}, &stubllm.Illustrator{}, nil, nil)

	_, err := svc.HandleText(context.Background(), "   short    ", "en")

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, simp.Calls)
}

func TestHandleText_Success(t *testing.T) {
	simp := &stubllm.Simplifier{KeyPoints: []string{"point one", "point two"}}
	ill := &stubllm.Illustrator{}
	svc := New(testConfig(), simp, &stubllm.Extractor{}, ill, nil, nil)

	letter := "Dear resident, your annual property tax statement is enclosed."
	envelope, err := svc.HandleText(context.Background(), letter, "en")

	assert.NoError(t, err)
	assert.Equal(t, len([]rune(letter)), envelope.Result.OriginalLength)
	assert.Equal(t, models.ToneNeutral, envelope.Result.Tone)
	assert.Equal(t, []string{dataURI("point one"), dataURI("point two")}, envelope.Images)
}

func TestHandleText_IllustrationFanOutIsCappedAtThree(t *testing.T) {
	simp := &stubllm.Simplifier{KeyPoints: []string{"a", "b", "c", "d"}}
	ill := &stubllm.Illustrator{}
	svc := New(testConfig(), simp, &stubllm.Extractor{}, ill, nil, nil)

	envelope, err := svc.HandleText(context.Background(), "a perfectly reasonable official letter", "en")

	assert.NoError(t, err)
	assert.Equal(t, 3, ill.Calls())
	assert.Equal(t, []string{dataURI("a"), dataURI("b"), dataURI("c")}, envelope.Images)
}

func TestHandleText_PartialIllustrationFailureKeepsOrder(t *testing.T) {
	simp := &stubllm.Simplifier{KeyPoints: []string{"a", "b", "c"}}
	ill := &stubllm.Illustrator{FailFor: map[string]bool{"b": true}}
	svc := New(testConfig(), simp, &stubllm.Extractor{}, ill, nil, nil)

	envelope, err := svc.HandleText(context.Background(), "a perfectly reasonable official letter", "en")

	assert.NoError(t, err)
	assert.Equal(t, []string{dataURI("a"), dataURI("c")}, envelope.Images)
}

func TestHandleText_AllIllustrationsFailingStillSucceeds(t *testing.T) {
	simp := &stubllm.Simplifier{KeyPoints: []string{"a", "b", "c"}}
	ill := &stubllm.Illustrator{FailFor: map[string]bool{"a": true, "b": true, "c": true}}
	svc := New(testConfig(), simp, &stubllm.Extractor{}, ill, nil, nil)

	envelope, err := svc.HandleText(context.Background(), "a perfectly reasonable official letter", "en")

	assert.NoError(t, err)
	assert.NotNil(t, envelope.Images)
	assert.Empty(t, envelope.Images)
}

func TestHandleText_EmptyIllustrationRepliesAreOmitted(t *testing.T) {
	simp := &stubllm.Simplifier{KeyPoints: []string{"a", "b"}}
	ill := &stubllm.Illustrator{EmptyFor: map[string]bool{"a": true}}
	svc := New(testConfig(), simp, &stubllm.Extractor{}, ill, nil, nil)

	envelope, err := svc.HandleText(context.Background(), "a perfectly reasonable official letter", "en")

	assert.NoError(t, err)
	assert.Equal(t, []string{dataURI("b")}, envelope.Images)
}

func TestHandleText_SimplifierFailureSkipsIllustrations(t *testing.T) {
	simp := &stubllm.Simplifier{Err: fmt.Errorf("upstream exploded")}
	ill := &stubllm.Illustrator{}
	svc := New(testConfig(), simp, &stubllm.Extractor{}, ill, nil, nil)

	_, err := svc.HandleText(context.Background(), "a perfectly reasonable official letter", "en")

	var upstreamErr *UpstreamError
	assert.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, 0, ill.Calls())
}

func TestHandleText_MissingCredentialIsAConfigurationError(t *testing.T) {
	simp := &stubllm.Simplifier{Err: fmt.Errorf("openai: %w", llm.ErrNotConfigured)}
	svc := New(testConfig(), simp, &stubllm.Extractor{}, &stubllm.Illustrator{}, nil, nil)

	_, err := svc.HandleText(context.Background(), "a perfectly reasonable official letter", "en")

	var configErr *ConfigurationError
	assert.ErrorAs(t, err, &configErr)
	assert.True(t, errors.Is(err, llm.ErrNotConfigured))
}

func TestHandleImage_RejectsUnsupportedMimeTypeBeforeAnyUpstreamCall(t *testing.T) {
	simp := &stubllm.Simplifier{}
	ill := &stubllm.Illustrator{}
	svc := New(testConfig(), simp, &stubllm.Extractor{}, ill, nil, nil)

	_, err := svc.HandleImage(context.Background(), []byte{0x42, 0x4d}, "image/bmp", "en")

	var mediaErr *UnsupportedMediaError
	assert.ErrorAs(t, err, &mediaErr)
	assert.Equal(t, 0, simp.Calls)
	assert.Equal(t, 0, ill.Calls())
}

func TestHandleImage_OriginalLengthIsAlwaysZero(t *testing.T) {
	simp := &stubllm.Simplifier{KeyPoints: []string{"a"}}
	svc := New(testConfig(), simp, &stubllm.Extractor{}, &stubllm.Illustrator{}, nil, nil)

	envelope, err := svc.HandleImage(context.Background(), []byte("fake-jpeg"), "image/jpeg", "he")

	assert.NoError(t, err)
	assert.Equal(t, 0, envelope.Result.OriginalLength)
}

func TestExtractText_EmptyTranscriptionIsValid(t *testing.T) {
	ext := &stubllm.Extractor{Text: ""}
	svc := New(testConfig(), &stubllm.Simplifier{}, ext, &stubllm.Illustrator{}, nil, nil)

	text, err := svc.ExtractText(context.Background(), []byte("fake-png"), "image/png")

	assert.NoError(t, err)
	assert.Equal(t, "", text)
	assert.Equal(t, 1, ext.Calls)
}

func TestExtractText_RejectsUnsupportedMimeType(t *testing.T) {
	ext := &stubllm.Extractor{}
	svc := New(testConfig(), &stubllm.Simplifier{}, ext, &stubllm.Illustrator{}, nil, nil)

	_, err := svc.ExtractText(context.Background(), []byte("tiff-data"), "image/tiff")

	var mediaErr *UnsupportedMediaError
	assert.ErrorAs(t, err, &mediaErr)
	assert.Equal(t, 0, ext.Calls)
}

func TestExtractText_TransportFailure(t *testing.T) {
	ext := &stubllm.Extractor{Err: fmt.Errorf("connection reset")}
	svc := New(testConfig(), &stubllm.Simplifier{}, ext, &stubllm.Illustrator{}, nil, nil)

	_, err := svc.ExtractText(context.Background(), []byte("fake-png"), "image/png")

	var upstreamErr *UpstreamError
	assert.ErrorAs(t, err, &upstreamErr)
}

func TestExtractText_MissingCredential(t *testing.T) {
	ext := &stubllm.Extractor{Err: fmt.Errorf("gemini: %w", llm.ErrNotConfigured)}
	svc := New(testConfig(), &stubllm.Simplifier{}, ext, &stubllm.Illustrator{}, nil, nil)

	_, err := svc.ExtractText(context.Background(), []byte("fake-png"), "image/png")

	var configErr *ConfigurationError
	assert.ErrorAs(t, err, &configErr)
}

func TestGetExplanation_NoStoreConfigured(t *testing.T) {
	svc := New(testConfig(), &stubllm.Simplifier{}, &stubllm.Extractor{}, &stubllm.Illustrator{}, nil, nil)

	exp, err := svc.GetExplanation(context.Background(), 1)

	assert.NoError(t, err)
	assert.Nil(t, exp)
}
