// Package llm provides the reasoning-agent backends used by triage and
// investigation. Two variants exist behind one capability interface: a
// direct Anthropic API call and an external CLI subprocess (claude or
// codex). Selection happens once, at construction, from explicit
// configuration; an unrecognized provider is a hard error.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Client is the capability interface every backend implements.
type Client interface {
	// Complete sends a rendered prompt and returns the agent's raw text
	// answer. Transport failures, timeouts, missing executables, and
	// non-zero exits all surface as errors; callers degrade them to
	// "no signal".
	Complete(ctx context.Context, prompt string) (string, error)
}

// Supported providers.
const (
	ProviderClaude = "claude"
	ProviderCodex  = "codex"
)

// Config selects and parameterizes a backend.
type Config struct {
	Provider        string
	APIKey          string // Anthropic key, required for the claude API path
	BaseURL         string // override for the API endpoint, defaults to Anthropic's
	Model           string // optional model override
	Timeout         time.Duration
	ForceSubprocess bool    // claude only: use the CLI even when a key is set
	Workdir         string  // investigation workspace handed to the agent
	BudgetUSD       float64 // per-invocation spend ceiling (claude CLI)
}

// NormalizeProvider lower-cases and validates a provider identifier.
func NormalizeProvider(provider string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(provider))
	switch normalized {
	case ProviderClaude, ProviderCodex:
		return normalized, nil
	default:
		return "", fmt.Errorf("unsupported provider: %q", provider)
	}
}

// NewTriageClient selects the ranking backend. Codex always runs as a
// subprocess; claude runs as a subprocess only when forced, otherwise it
// calls the Anthropic API directly and requires an API key.
func NewTriageClient(cfg Config) (Client, error) {
	provider, err := NormalizeProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}

	if provider == ProviderCodex {
		return NewCodexCLIClient(cfg), nil
	}
	if cfg.ForceSubprocess {
		return NewClaudeCLIClient(cfg), nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required for the claude API backend")
	}
	return NewAnthropicClient(cfg), nil
}

// NewAgentClient selects the investigation backend. Investigation always
// runs the agent as a subprocess against the cloned workspace.
func NewAgentClient(cfg Config) (Client, error) {
	provider, err := NormalizeProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}

	if provider == ProviderCodex {
		return NewCodexCLIClient(cfg), nil
	}
	return NewClaudeCLIClient(cfg), nil
}
