package ai

import (
	"context"
	"strings"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

type groqConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

// groq exposes an OpenAI-compatible chat API but no embedding endpoint.
type groqProvider struct {
	inner *openAIProvider
}

func (p *groqProvider) Name() string {
	return "groq"
}

func (p *groqProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	return p.inner.Generate(ctx, model, prompt)
}

func (p *groqProvider) Embed(ctx context.Context, model string, text string) ([]float32, error) {
	return nil, ErrUnavailable
}

func createGroqFactory(args interface{}) (IProvider, error) {
	cfg := &groqConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	return &groqProvider{
		inner: &openAIProvider{
			name:    "groq",
			apiKey:  strings.TrimSpace(cfg.APIKey),
			baseURL: baseURL,
		},
	}, nil
}

func init() {
	Register("groq", createGroqFactory)
}
