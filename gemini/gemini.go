package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"letter-simplify-service/llm"
	"letter-simplify-service/models"
)

// ocrPrompt instructs the model to transcribe, not interpret. An empty
// reply is a valid outcome when the photo has no legible text.
const ocrPrompt = `Please extract all text from this image. The image contains an official document or letter. Return only the extracted text, preserving the original formatting and structure as much as possible. If the text is in Hebrew, keep it in Hebrew. If you cannot read any text, respond with an empty string.`

// illustrationStylePrompt is the fixed style instruction prepended to every
// illustration request.
const illustrationStylePrompt = `Create a simple, calming illustration in a professional, friendly style.
The image should be:
- Clean and minimalist
- Use soft, muted colors (blues, greens, warm neutrals)
- Suitable for explaining official documents to elderly people
- Professional but approachable
- No text in the image
- Simple iconographic style`

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
	Temperature        *float64 `json:"temperature,omitempty"`
}

type geminiRequest struct {
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
	Contents         []content         `json:"contents"`
}

type respInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text       string          `json:"text,omitempty"`
				InlineData *respInlineData `json:"inlineData,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client talks to the Gemini REST API for OCR and illustration generation
type Client struct {
	apiKey     string
	model      string
	imageModel string
	baseURL    string
	http       *http.Client
}

// NewClient creates a new Gemini client. model handles OCR, imageModel
// handles illustration generation.
func NewClient(apiKey, model, imageModel, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		imageModel: imageModel,
		baseURL:    baseURL,
		http:       &http.Client{},
	}
}

// SourceName identifies this provider in logs and metrics
func (c *Client) SourceName() string {
	return "Gemini"
}

// ExtractText transcribes a photographed letter. The mime type is checked
// before any network call; an empty transcription is a valid result.
func (c *Client) ExtractText(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	if !models.AllowedImageMimeTypes[mimeType] {
		return "", fmt.Errorf("unsupported image type: %s", mimeType)
	}

	zero := 0.0
	reqBody := geminiRequest{
		GenerationConfig: &generationConfig{Temperature: &zero},
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{Text: ocrPrompt},
					{InlineData: &inlineData{
						MimeType: mimeType,
						Data:     base64.StdEncoding.EncodeToString(imageData),
					}},
				},
			},
		},
	}

	resp, err := c.generateContent(ctx, c.model, reqBody)
	if err != nil {
		return "", err
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			return p.Text, nil
		}
	}
	return "", nil
}

// GenerateIllustration requests one image for a key point and returns it as
// a base64 data URI. It returns "" with a nil error when the model replied
// without an image part, so a missing image never aborts a batch.
func (c *Client) GenerateIllustration(ctx context.Context, keyPoint string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nIllustrate this concept: %q\n\nCreate a simple, friendly illustration that helps explain this point visually.", illustrationStylePrompt, keyPoint)

	reqBody := geminiRequest{
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: prompt}},
			},
		},
	}

	resp, err := c.generateContent(ctx, c.imageModel, reqBody)
	if err != nil {
		return "", err
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			mimeType := p.InlineData.MimeType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return fmt.Sprintf("data:%s;base64,%s", mimeType, p.InlineData.Data), nil
		}
	}
	return "", nil
}

func (c *Client) generateContent(ctx context.Context, model string, body geminiRequest) (*geminiResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", llm.ErrNotConfigured)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// try v1beta first, then v1
	endpoints := []string{
		fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey),
		fmt.Sprintf("%s/v1/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey),
	}

	var lastErr error
	for _, ep := range endpoints {
		req, err := http.NewRequestWithContext(ctx, "POST", ep, bytes.NewBuffer(data))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to send request: %w", err)
			continue
		}
		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
			// retry next endpoint if available
			continue
		}

		var gr geminiResponse
		if err := json.Unmarshal(bodyBytes, &gr); err != nil {
			lastErr = fmt.Errorf("failed to parse response: %w", err)
			continue
		}
		if len(gr.Candidates) == 0 {
			lastErr = fmt.Errorf("no candidates in response")
			continue
		}
		return &gr, nil
	}
	return nil, lastErr
}
