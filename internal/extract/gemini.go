package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.0-flash-lite"

// WithGemini asks Gemini to extract structured fields from raw OCR text. Used
// as a fallback when regex extraction recognizes nothing; OCR noise defeats
// label-based regexes far more often than it defeats an LLM.
func WithGemini(ctx context.Context, apiKey, ocrText string) (Fields, error) {
	var out Fields
	if strings.TrimSpace(apiKey) == "" {
		return out, errors.New("missing Gemini API key")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return out, fmt.Errorf("init Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(geminiModel)
	model.GenerationConfig = genai.GenerationConfig{ResponseMIMEType: "application/json"}

	prompt := `You are an expert data extraction assistant. Extract the following fields from the raw text of an academic certificate and return them as a JSON object.

Rules:
1. The fields are: "certificate_id", "name", "roll_number", "course", "issuer".
2. If a field cannot be found, its value must be null.
3. Respond with ONLY the JSON object, no explanations or surrounding text.
4. Strip stray newlines and extra whitespace from the extracted values.

Raw text:
"""
` + ocrText + `
"""`

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return out, fmt.Errorf("gemini generation failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return out, errors.New("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	jsonStr := stripCodeFences(sb.String())
	if obj, ok := extractBalanced(jsonStr, '{', '}'); ok {
		jsonStr = obj
	}
	if jsonStr == "" {
		return out, errors.New("no JSON in Gemini response")
	}

	// Null values are expected, so decode into a map first.
	var tmp map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &tmp); err != nil {
		return out, fmt.Errorf("parse Gemini JSON: %w", err)
	}
	get := func(k string) string {
		if s, ok := tmp[k].(string); ok {
			return strings.TrimSpace(s)
		}
		return ""
	}
	out.CertificateID = get("certificate_id")
	out.Name = get("name")
	out.RollNumber = get("roll_number")
	out.Course = get("course")
	out.Issuer = get("issuer")
	return out, nil
}

// stripCodeFences removes surrounding Markdown code fences like ```json ... ```.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	if i := strings.IndexByte(s, '\n'); i != -1 {
		if first := strings.TrimSpace(s[:i]); len(first) > 0 && len(first) < 20 {
			// language tag like "json"
			s = s[i+1:]
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// extractBalanced returns the first balanced region delimited by open/close.
func extractBalanced(s string, open, close rune) (string, bool) {
	start := -1
	depth := 0
	for i, r := range s {
		switch r {
		case open:
			if depth == 0 {
				start = i
			}
			depth++
		case close:
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
