package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"letter-simplify-service/config"
	"letter-simplify-service/llm"
	"letter-simplify-service/models"
	"letter-simplify-service/service"
	"letter-simplify-service/stubllm"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(simp *stubllm.Simplifier, ext *stubllm.Extractor, ill *stubllm.Illustrator) *gin.Engine {
	cfg := &config.Config{
		RequestTimeout:   5 * time.Second,
		MaxIllustrations: 3,
	}
	svc := service.New(cfg, simp, ext, ill, nil, nil)
	h := New(svc)

	router := gin.New()
	router.GET("/health", h.HealthCheck)
	router.POST("/api/simplify", h.Simplify)
	router.POST("/api/simplify-image", h.SimplifyImage)
	router.POST("/api/ocr", h.ExtractText)
	router.GET("/api/explanations/:id", h.GetExplanation)
	return router
}

// imageUpload builds a multipart body with a single "image" part carrying an
// explicit Content-Type, plus optional extra form fields.
func imageUpload(t *testing.T, contentType string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="letter.jpg"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func doJSON(router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&stubllm.Simplifier{}, &stubllm.Extractor{}, &stubllm.Illustrator{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestSimplify_Success(t *testing.T) {
	router := newTestRouter(&stubllm.Simplifier{KeyPoints: []string{"one", "two"}}, &stubllm.Extractor{}, &stubllm.Illustrator{})

	w := doJSON(router, "POST", "/api/simplify", gin.H{
		"text":     "Dear resident, your annual property tax statement is enclosed.",
		"language": "en",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope models.ResponseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Result.SimplifiedText)
	assert.Equal(t, models.ToneNeutral, envelope.Result.Tone)
	assert.Len(t, envelope.Images, 2)
}

func TestSimplify_MissingTextField(t *testing.T) {
	router := newTestRouter(&stubllm.Simplifier{}, &stubllm.Extractor{}, &stubllm.Illustrator{})

	w := doJSON(router, "POST", "/api/simplify", gin.H{"language": "en"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request")
}

func TestSimplify_TextTooShort(t *testing.T) {
	simp := &stubllm.Simplifier{}
	router := newTestRouter(simp, &stubllm.Extractor{}, &stubllm.Illustrator{})

	w := doJSON(router, "POST", "/api/simplify", gin.H{"text": "too short"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least 10 characters")
	assert.Equal(t, 0, simp.Calls)
}

func TestSimplify_UpstreamFailureIsOpaque(t *testing.T) {
	simp := &stubllm.Simplifier{Err: fmt.Errorf("api quota exceeded: secret-key-123")}
	router := newTestRouter(simp, &stubllm.Extractor{}, &stubllm.Illustrator{})

	w := doJSON(router, "POST", "/api/simplify", gin.H{"text": "a perfectly reasonable official letter"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to process your letter")
	assert.NotContains(t, w.Body.String(), "secret-key-123")
}

func TestSimplify_MissingCredentialStaysOpaque(t *testing.T) {
	simp := &stubllm.Simplifier{Err: fmt.Errorf("openai: %w", llm.ErrNotConfigured)}
	router := newTestRouter(simp, &stubllm.Extractor{}, &stubllm.Illustrator{})

	w := doJSON(router, "POST", "/api/simplify", gin.H{"text": "a perfectly reasonable official letter"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to process your letter")
	assert.NotContains(t, w.Body.String(), "not configured")
}

func TestSimplifyImage_Success(t *testing.T) {
	router := newTestRouter(&stubllm.Simplifier{KeyPoints: []string{"one"}}, &stubllm.Extractor{}, &stubllm.Illustrator{})

	body, contentType := imageUpload(t, "image/jpeg", []byte("fake-jpeg-bytes"), map[string]string{"language": "he"})
	req := httptest.NewRequest("POST", "/api/simplify-image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope models.ResponseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 0, envelope.Result.OriginalLength)
	assert.Len(t, envelope.Images, 1)
}

func TestSimplifyImage_NoImageProvided(t *testing.T) {
	router := newTestRouter(&stubllm.Simplifier{}, &stubllm.Extractor{}, &stubllm.Illustrator{})

	req := httptest.NewRequest("POST", "/api/simplify-image", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No image provided")
}

func TestSimplifyImage_UnsupportedMimeType(t *testing.T) {
	simp := &stubllm.Simplifier{}
	router := newTestRouter(simp, &stubllm.Extractor{}, &stubllm.Illustrator{})

	body, contentType := imageUpload(t, "image/bmp", []byte("fake-bmp-bytes"), nil)
	req := httptest.NewRequest("POST", "/api/simplify-image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported image type: image/bmp")
	assert.Contains(t, w.Body.String(), "JPEG, PNG, WebP, GIF")
	assert.Equal(t, 0, simp.Calls)
}

func TestSimplifyImage_MissingCredential(t *testing.T) {
	simp := &stubllm.Simplifier{Err: fmt.Errorf("openai: %w", llm.ErrNotConfigured)}
	router := newTestRouter(simp, &stubllm.Extractor{}, &stubllm.Illustrator{})

	body, contentType := imageUpload(t, "image/png", []byte("fake-png-bytes"), nil)
	req := httptest.NewRequest("POST", "/api/simplify-image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "not configured properly")
}

func TestExtractText_Success(t *testing.T) {
	ext := &stubllm.Extractor{Text: "Dear Sir or Madam,"}
	router := newTestRouter(&stubllm.Simplifier{}, ext, &stubllm.Illustrator{})

	body, contentType := imageUpload(t, "image/png", []byte("fake-png-bytes"), nil)
	req := httptest.NewRequest("POST", "/api/ocr", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Dear Sir or Madam,", resp.Text)
}

func TestExtractText_EmptyTranscriptionReturns200(t *testing.T) {
	ext := &stubllm.Extractor{Text: ""}
	router := newTestRouter(&stubllm.Simplifier{}, ext, &stubllm.Illustrator{})

	body, contentType := imageUpload(t, "image/png", []byte("fake-png-bytes"), nil)
	req := httptest.NewRequest("POST", "/api/ocr", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text": ""}`, w.Body.String())
}

func TestExtractText_UpstreamFailure(t *testing.T) {
	ext := &stubllm.Extractor{Err: fmt.Errorf("connection reset")}
	router := newTestRouter(&stubllm.Simplifier{}, ext, &stubllm.Illustrator{})

	body, contentType := imageUpload(t, "image/png", []byte("fake-png-bytes"), nil)
	req := httptest.NewRequest("POST", "/api/ocr", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestGetExplanation_InvalidID(t *testing.T) {
	router := newTestRouter(&stubllm.Simplifier{}, &stubllm.Extractor{}, &stubllm.Illustrator{})

	req := httptest.NewRequest("GET", "/api/explanations/not-a-number", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid explanation id")
}

func TestGetExplanation_NotFound(t *testing.T) {
	router := newTestRouter(&stubllm.Simplifier{}, &stubllm.Extractor{}, &stubllm.Illustrator{})

	req := httptest.NewRequest("GET", "/api/explanations/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Explanation not found")
}
