package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"letter-simplify-service/models"
	"letter-simplify-service/service"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// maxUploadSize caps letter photo uploads at 10 MB.
const maxUploadSize = 10 << 20

// genericFailureMessage is the only thing callers see on unexpected
// failures; upstream diagnostic detail stays in server logs.
const genericFailureMessage = "Failed to process your letter. Please try again."

// Handlers holds the HTTP handlers for the simplify API
type Handlers struct {
	svc *service.Service
}

// New creates new HTTP handlers
func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "letter-simplify-service",
	})
}

// Simplify handles POST /api/simplify: pasted letter text in, simplified
// explanation plus illustrations out.
func (h *Handlers) Simplify(c *gin.Context) {
	var req models.SimplifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	envelope, err := h.svc.HandleText(c.Request.Context(), req.Text, req.Language)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"details": validationErr.Reason,
			})
			return
		}
		// Configuration errors collapse into the generic body too: this
		// route's contract is a single stable failure message. Only the
		// image route surfaces the distinct configuration message.
		log.Errorf("Error processing simplify request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": genericFailureMessage,
		})
		return
	}

	c.JSON(http.StatusOK, envelope)
}

// SimplifyImage handles POST /api/simplify-image: a photographed letter
// arrives as multipart form field "image" with an optional "language".
func (h *Handlers) SimplifyImage(c *gin.Context) {
	imageData, mimeType, ok := h.readImageUpload(c)
	if !ok {
		return
	}

	envelope, err := h.svc.HandleImage(c.Request.Context(), imageData, mimeType, c.PostForm("language"))
	if err != nil {
		var mediaErr *service.UnsupportedMediaError
		if errors.As(err, &mediaErr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": mediaErr.Error()})
			return
		}
		var configErr *service.ConfigurationError
		if errors.As(err, &configErr) {
			log.Errorf("Error processing simplify-image request: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": configErr.Error()})
			return
		}
		log.Errorf("Error processing simplify-image request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": genericFailureMessage,
		})
		return
	}

	c.JSON(http.StatusOK, envelope)
}

// ExtractText handles POST /api/ocr, the OCR-only entry point. An empty
// text field in the response means no legible text was found.
func (h *Handlers) ExtractText(c *gin.Context) {
	imageData, mimeType, ok := h.readImageUpload(c)
	if !ok {
		return
	}

	text, err := h.svc.ExtractText(c.Request.Context(), imageData, mimeType)
	if err != nil {
		log.Errorf("Error processing OCR request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

// GetExplanation handles GET /api/explanations/:id
func (h *Handlers) GetExplanation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid explanation id"})
		return
	}

	exp, err := h.svc.GetExplanation(c.Request.Context(), id)
	if err != nil {
		log.Errorf("Failed to load explanation %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load explanation"})
		return
	}
	if exp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Explanation not found"})
		return
	}

	c.JSON(http.StatusOK, exp)
}

// readImageUpload pulls the "image" multipart field. It writes the error
// response itself and reports success through the bool.
func (h *Handlers) readImageUpload(c *gin.Context) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return nil, "", false
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large (max 10 MB)"})
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Errorf("Failed to open uploaded image: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return nil, "", false
	}
	defer file.Close()

	imageData, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		log.Errorf("Failed to read uploaded image: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return nil, "", false
	}

	return imageData, uploadMimeType(fileHeader, imageData), true
}

// uploadMimeType prefers the client-declared content type and falls back to
// content sniffing when the header is absent.
func uploadMimeType(fileHeader *multipart.FileHeader, imageData []byte) string {
	if mimeType := fileHeader.Header.Get("Content-Type"); mimeType != "" {
		return mimeType
	}
	return http.DetectContentType(imageData)
}
