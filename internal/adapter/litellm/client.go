// Package litellm provides a completion provider that talks to a LiteLLM
// proxy through its OpenAI-compatible chat endpoint.
package litellm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Strob0t/TripForge/internal/port/llmprovider"
)

// ProviderName is the registry name of this adapter.
const ProviderName = "litellm"

// DefaultModel is the model alias requested when none is configured.
const DefaultModel = "gemini/gemini-2.0-flash"

func init() {
	llmprovider.Register(ProviderName, func(cfg map[string]string) (llmprovider.Provider, error) {
		baseURL := cfg[llmprovider.ConfigBaseURL]
		if baseURL == "" {
			return nil, errors.New("litellm: base_url is required")
		}
		c := NewClient(baseURL, cfg[llmprovider.ConfigMasterKey])
		if m := cfg[llmprovider.ConfigModel]; m != "" {
			c.model = m
		}
		return c, nil
	})
}

// Client sends chat completions to a LiteLLM proxy. It implements
// llmprovider.Provider.
type Client struct {
	baseURL    string
	masterKey  string
	model      string
	httpClient *http.Client
}

// NewClient creates a new LiteLLM client. Request deadlines come from the
// caller's context.
func NewClient(baseURL, masterKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		masterKey:  masterKey,
		model:      DefaultModel,
		httpClient: &http.Client{},
	}
}

// Name implements llmprovider.Provider.
func (c *Client) Name() string { return "LiteLLM" }

// Model returns the model alias sent with each request.
func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete implements llmprovider.Provider with a single user message.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	data, err := c.doRequest(ctx, http.MethodPost, "/v1/chat/completions", body)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("unmarshal chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("litellm returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Health checks if the proxy is reachable.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/health/liveliness", nil)
	return err
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.masterKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.masterKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("litellm API error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
