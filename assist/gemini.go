package assist

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is given.
const DefaultModel = "gemini-2.5-flash"

// Gemini is a [Model] backed by the Gemini API.
type Gemini struct {
	Client    *genai.Client
	ModelName string
	Config    *genai.GenerateContentConfig // base config, the system instruction is set per call
}

// NewGemini connects to the Gemini API. An empty key reads GEMINI_API_KEY or
// GOOGLE_API_KEY from the environment.
func NewGemini(ctx context.Context, key, model string) (*Gemini, error) {
	var cfg *genai.ClientConfig
	if key != "" {
		cfg = &genai.ClientConfig{APIKey: key, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini's client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{
		Client:    client,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr[float32](0.1),
		},
	}, nil
}

func (g *Gemini) Generate(ctx context.Context, system, prompt string) (string, error) {
	var cfg genai.GenerateContentConfig
	if g.Config != nil {
		cfg = *g.Config
	}
	cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}

	resp, err := g.Client.Models.GenerateContent(ctx, g.ModelName, genai.Text(prompt), &cfg)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from %s", g.ModelName)
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}
