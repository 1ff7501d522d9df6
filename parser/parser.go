package parser

import (
	"encoding/json"
	"strings"

	"letter-simplify-service/models"
)

// fallbackSummaries are substituted when the model omits a summary entirely.
var fallbackSummaries = map[string]string{
	models.LanguageEnglish: "Unable to summarize this letter.",
	models.LanguageHebrew:  "לא ניתן לסכם מכתב זה.",
}

// rawResult mirrors the JSON shape the simplification prompt asks for.
// Every field is optional on the wire; missing fields get fallbacks.
type rawResult struct {
	Summary        string   `json:"summary"`
	SimplifiedText string   `json:"simplifiedText"`
	ActionItems    []string `json:"actionItems"`
	KeyPoints      []string `json:"keyPoints"`
	Tone           string   `json:"tone"`
}

// ExtractJSONFromMarkdown extracts JSON from markdown code blocks. Models
// sometimes wrap their reply in ``` fences or surround it with prose even
// when asked for JSON only.
func ExtractJSONFromMarkdown(response string) string {
	startMarker := "```"
	endMarker := "```"

	startIdx := strings.Index(response, startMarker)
	if startIdx == -1 {
		// No code block found, try to find a JSON object directly
		startIdx = strings.Index(response, "{")
		if startIdx == -1 {
			return response
		}
		endIdx := strings.LastIndex(response, "}")
		// A "}" before the first "{" means there is no object here, just
		// prose with stray braces. Return the reply as-is and let the
		// caller's decode failure handling take over.
		if endIdx < startIdx {
			return response
		}
		return strings.TrimSpace(response[startIdx : endIdx+1])
	}

	endIdx := strings.Index(response[startIdx+len(startMarker):], endMarker)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(startMarker)

	content := response[startIdx+len(startMarker) : endIdx]

	// Remove the language identifier if present (e.g., "json")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && (strings.TrimSpace(lines[0]) == "json" || strings.TrimSpace(lines[0]) == "") {
		content = strings.Join(lines[1:], "\n")
	}

	return strings.TrimSpace(content)
}

// ParseSimplified parses a model reply into a SimplifiedResult. It never
// fails: an unparseable reply or a missing field yields locale-appropriate
// fallbacks so the caller always gets a usable result. The summary is the
// primary artifact, so transport errors are the provider's to report, not
// this function's.
func ParseSimplified(response, originalText, language string) models.SimplifiedResult {
	language = models.ResolveLanguage(language)

	var raw rawResult
	cleaned := ExtractJSONFromMarkdown(strings.TrimSpace(response))
	// A decode error leaves raw zero-valued, which the fallbacks below cover.
	_ = json.Unmarshal([]byte(cleaned), &raw)

	result := models.SimplifiedResult{
		Summary:        raw.Summary,
		SimplifiedText: raw.SimplifiedText,
		ActionItems:    raw.ActionItems,
		KeyPoints:      raw.KeyPoints,
		Tone:           raw.Tone,
	}

	if result.Summary == "" {
		result.Summary = fallbackSummaries[language]
	}
	if result.SimplifiedText == "" {
		result.SimplifiedText = originalText
	}
	if result.ActionItems == nil {
		result.ActionItems = []string{}
	}
	if result.KeyPoints == nil {
		result.KeyPoints = []string{}
	}
	if !models.ValidTone(result.Tone) {
		result.Tone = models.ToneNeutral
	}

	result.OriginalLength = len([]rune(originalText))
	result.SimplifiedLength = len([]rune(result.SimplifiedText))

	return result
}
