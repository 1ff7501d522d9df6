package models

import "time"

// Supported target languages for simplification output.
const (
	LanguageEnglish = "en"
	LanguageHebrew  = "he"
)

// Tone classifies the overall sentiment/urgency of a letter. The UI uses it
// to pick styling, so it must always be one of the four known values.
const (
	ToneUrgent        = "urgent"
	ToneInformational = "informational"
	TonePositive      = "positive"
	ToneNeutral       = "neutral"
)

// ValidTone reports whether t is one of the four known tone values.
func ValidTone(t string) bool {
	switch t {
	case ToneUrgent, ToneInformational, TonePositive, ToneNeutral:
		return true
	}
	return false
}

// ResolveLanguage normalizes a requested language code. Anything other than
// "he" falls back to English.
func ResolveLanguage(lang string) string {
	if lang == LanguageHebrew {
		return LanguageHebrew
	}
	return LanguageEnglish
}

// AllowedImageMimeTypes is the allow-list for uploaded letter photos.
var AllowedImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// SimplifyRequest is the body of POST /api/simplify.
type SimplifyRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"language,omitempty"`
}

// SimplifiedResult is the structured explanation produced from a letter.
type SimplifiedResult struct {
	Summary          string   `json:"summary"`
	SimplifiedText   string   `json:"simplifiedText"`
	ActionItems      []string `json:"actionItems"`
	KeyPoints        []string `json:"keyPoints"`
	Tone             string   `json:"tone"`
	OriginalLength   int      `json:"originalLength"`
	SimplifiedLength int      `json:"simplifiedLength"`
}

// ResponseEnvelope is the success payload of both simplify endpoints.
// Images are base64 data URIs, at most one per key point, in key-point
// order; failed generations are omitted rather than null-padded.
type ResponseEnvelope struct {
	Result SimplifiedResult `json:"result"`
	Images []string         `json:"images"`
}

// Explanation is a stored record of a processed letter. Persistence is off
// the request hot path; a failed save never fails the request.
type Explanation struct {
	ID             int64     `json:"id"`
	OriginalText   string    `json:"original_text"`
	SimplifiedText string    `json:"simplified_text"`
	Summary        string    `json:"summary"`
	ActionItems    []string  `json:"action_items"`
	KeyPoints      []string  `json:"key_points"`
	Tone           string    `json:"tone"`
	Language       string    `json:"language"`
	CreatedAt      time.Time `json:"created_at"`
}
