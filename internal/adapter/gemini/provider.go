// Package gemini provides the Google Gemini completion provider.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/Strob0t/TripForge/internal/port/llmprovider"
)

// ProviderName is the registry name of this adapter.
const ProviderName = "gemini"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

func init() {
	llmprovider.Register(ProviderName, func(cfg map[string]string) (llmprovider.Provider, error) {
		return New(context.Background(), cfg[llmprovider.ConfigAPIKey], cfg[llmprovider.ConfigModel], cfg[llmprovider.ConfigBaseURL])
	})
}

// Provider calls the Gemini generateContent API.
type Provider struct {
	client *genai.Client
	model  string
}

// New creates a Gemini provider. An empty model selects DefaultModel; an
// empty baseURL uses the public endpoint.
func New(ctx context.Context, apiKey, model, baseURL string) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required (set GEMINI_API_KEY)")
	}
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Provider{client: client, model: model}, nil
}

// Name implements llmprovider.Provider.
func (p *Provider) Name() string { return "Gemini" }

// Model returns the configured model name.
func (p *Provider) Model() string { return p.model }

// Complete implements llmprovider.Provider.
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}
