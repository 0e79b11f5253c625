// Package llmprovider defines the port for remote text-completion services.
package llmprovider

import "context"

// Config keys understood by the registered factories. Providers ignore keys
// they do not use.
const (
	ConfigAPIKey    = "api_key"
	ConfigModel     = "model"
	ConfigBaseURL   = "base_url"
	ConfigMasterKey = "master_key"
)

// Provider sends one prompt and returns the model's text answer.
type Provider interface {
	// Name is the human-readable service name used in error messages,
	// e.g. "Gemini".
	Name() string

	// Complete performs a single completion call. It does not retry.
	Complete(ctx context.Context, prompt string) (string, error)
}

// HealthChecker is implemented by providers that can probe their backend
// without spending a completion.
type HealthChecker interface {
	Health(ctx context.Context) error
}
