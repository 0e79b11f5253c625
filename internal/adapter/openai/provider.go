// Package openai provides a completion provider for the OpenAI chat API and
// compatible servers.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Strob0t/TripForge/internal/port/llmprovider"
)

// ProviderName is the registry name of this adapter.
const ProviderName = "openai"

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

func init() {
	llmprovider.Register(ProviderName, func(cfg map[string]string) (llmprovider.Provider, error) {
		return New(cfg[llmprovider.ConfigAPIKey], cfg[llmprovider.ConfigModel], cfg[llmprovider.ConfigBaseURL])
	})
}

// Provider calls the chat completions endpoint with SDK retries disabled.
type Provider struct {
	client openai.Client
	model  string
}

// New creates an OpenAI provider. baseURL may point at any
// OpenAI-compatible server; empty uses the SDK default.
func New(apiKey, model, baseURL string) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key is required (set OPENAI_API_KEY)")
	}
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Provider{client: openai.NewClient(opts...), model: model}, nil
}

// Name implements llmprovider.Provider.
func (p *Provider) Name() string { return "OpenAI" }

// Model returns the configured model name.
func (p *Provider) Model() string { return p.model }

// Complete implements llmprovider.Provider.
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
