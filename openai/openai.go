package openai

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
	"letter-simplify-service/parser"
)

// simplifyPrompts holds the full system instruction per target language.
// Keeping one complete template per locale avoids branching on language
// inside the prompt text itself.
var simplifyPrompts = map[string]string{
	models.LanguageEnglish: `You are an expert at transforming complex bureaucratic and legal text into simple, friendly language that anyone can understand - especially elderly people who may feel anxious about official documents.

Your job is to:
1. Read the official letter/document carefully
2. Identify the main purpose and any required actions
3. Rewrite it in warm, clear, simple English
4. Extract key points and action items

Guidelines:
- Use short sentences (max 15-20 words each)
- Avoid jargon, legal terms, and complex vocabulary
- Be reassuring - reduce anxiety, not increase it
- Use "you" and "your" to make it personal
- If there are deadlines, make them very clear
- If money is involved, be specific about amounts

Respond in JSON format with these fields:
{
  "summary": "A 1-2 sentence overview of what this letter is about",
  "simplifiedText": "The full letter rewritten in simple, friendly language",
  "actionItems": ["List of specific things the person needs to do, if any"],
  "keyPoints": ["3-5 key points from the letter in simple terms"],
  "tone": "urgent | informational | positive | neutral"
}

The tone should be:
- "urgent" if there are deadlines or required actions
- "positive" if it's good news (refund, approval, etc.)
- "informational" if it's just sharing information
- "neutral" for general notices`,

	models.LanguageHebrew: `You are an expert at transforming complex bureaucratic and legal text into simple, friendly Hebrew that anyone can understand - especially elderly people who may feel anxious about official documents.

Your job is to:
1. Read the official letter/document carefully
2. Identify the main purpose and any required actions
3. Rewrite it in warm, clear, simple Hebrew
4. Extract key points and action items, all in Hebrew

Guidelines:
- Use short sentences (max 15-20 words each)
- Avoid jargon, legal terms, and complex vocabulary
- Be reassuring - reduce anxiety, not increase it
- Address the reader directly and personally
- If there are deadlines, make them very clear
- If money is involved, be specific about amounts
- All output values must be written in Hebrew

Respond in JSON format with these fields:
{
  "summary": "A 1-2 sentence overview of what this letter is about, in Hebrew",
  "simplifiedText": "The full letter rewritten in simple, friendly Hebrew",
  "actionItems": ["List of specific things the person needs to do, if any, in Hebrew"],
  "keyPoints": ["3-5 key points from the letter in simple Hebrew"],
  "tone": "urgent | informational | positive | neutral"
}

The tone field itself must stay in English and should be:
- "urgent" if there are deadlines or required actions
- "positive" if it's good news (refund, approval, etc.)
- "informational" if it's just sharing information
- "neutral" for general notices`,
}

// imagePromptSuffix is appended to the system prompt on the vision path,
// where the letter arrives as a photo instead of pasted text.
const imagePromptSuffix = `

The letter is provided as a photo. Read all text from the image first, then proceed exactly as above. If the photo contains no legible letter, return the JSON with an empty summary.`

type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ImageContent struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client represents an OpenAI API client used for letter simplification
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewClient creates a new OpenAI client
func NewClient(apiKey, model, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// SourceName identifies this provider in logs and metrics
func (c *Client) SourceName() string {
	return "ChatGPT"
}

// Simplify rewrites raw letter text into a structured explanation.
// The reply is parsed defensively: malformed or incomplete model output
// never fails the call, only transport and API errors do.
func (c *Client) Simplify(ctx context.Context, text, language string) (models.SimplifiedResult, error) {
	language = models.ResolveLanguage(language)

	reqBody := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: simplifyPrompts[language]},
			{Role: "user", Content: text},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		MaxTokens:      2048,
	}

	content, err := c.chatCompletion(ctx, reqBody)
	if err != nil {
		return models.SimplifiedResult{}, err
	}

	return parser.ParseSimplified(content, text, language), nil
}

// SimplifyImage reads and simplifies a photographed letter in one vision
// call. The original text length is unknown on this path, so the result
// reports an original length of zero.
func (c *Client) SimplifyImage(ctx context.Context, imageData []byte, mimeType, language string) (models.SimplifiedResult, error) {
	language = models.ResolveLanguage(language)

	imagePart := ImageContent{
		Type: "image_url",
		ImageURL: ImageURL{
			URL: encodeImageToBase64(imageData, mimeType),
		},
	}

	reqBody := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: simplifyPrompts[language] + imagePromptSuffix},
			{Role: "user", Content: []any{imagePart}},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		MaxTokens:      2048,
	}

	content, err := c.chatCompletion(ctx, reqBody)
	if err != nil {
		return models.SimplifiedResult{}, err
	}

	return parser.ParseSimplified(content, "", language), nil
}

// encodeImageToBase64 converts image bytes to a base64 data URL
func encodeImageToBase64(imageData []byte, mimeType string) string {
	base64Data := base64.StdEncoding.EncodeToString(imageData)
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64Data)
}

func (c *Client) chatCompletion(ctx context.Context, reqBody ChatRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai: %w", llm.ErrNotConfigured)
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return chatResp.Choices[0].Message.Content, nil
}
