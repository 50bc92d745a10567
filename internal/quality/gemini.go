package quality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/saulo-duarte/chronos-goals/internal/config"
)

const maxSuggestions = 5

type geminiAdvisor struct {
	client *genai.Client
	model  string
}

// NewGeminiAdvisor builds an advisor on the Gemini API. With an empty key the
// client falls back to GOOGLE_API_KEY / GEMINI_API_KEY from the environment.
func NewGeminiAdvisor(ctx context.Context, apiKey, model string) (Advisor, error) {
	var cfg *genai.ClientConfig
	if apiKey != "" {
		cfg = &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiAdvisor{client: client, model: model}, nil
}

func (a *geminiAdvisor) Suggest(ctx context.Context, c Candidate) ([]string, error) {
	log := config.WithContext(ctx)

	result, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(systemPrompt+"\n\n"+buildUserPrompt(c)), nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	raw := result.Text()
	log.Debugf("Advisor raw response:\n%s", raw)
	return parseSuggestions(raw)
}

// parseSuggestions reads the JSON array of strings the prompt asks for,
// tolerating a markdown code fence around it.
func parseSuggestions(raw string) ([]string, error) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return nil, errors.New("empty model response")
	}
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.Trim(clean, "`")

	var suggestions []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(clean)), &suggestions); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}

	out := suggestions[:0]
	for _, s := range suggestions {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out, nil
}
