package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"claude", "claude", false},
		{"codex", "codex", false},
		{"Claude", "claude", false},
		{" CODEX ", "codex", false},
		{"gemini", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			got, err := NormalizeProvider(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeProvider(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeProvider(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewTriageClient(t *testing.T) {
	t.Run("codex always uses subprocess", func(t *testing.T) {
		client, err := NewTriageClient(Config{Provider: "codex"})
		require.NoError(t, err)
		assert.IsType(t, &CodexCLIClient{}, client)
	})

	t.Run("claude with key uses API", func(t *testing.T) {
		client, err := NewTriageClient(Config{Provider: "claude", APIKey: "k"})
		require.NoError(t, err)
		assert.IsType(t, &AnthropicClient{}, client)
	})

	t.Run("claude forced subprocess", func(t *testing.T) {
		client, err := NewTriageClient(Config{Provider: "claude", ForceSubprocess: true})
		require.NoError(t, err)
		assert.IsType(t, &ClaudeCLIClient{}, client)
	})

	t.Run("claude API without key fails", func(t *testing.T) {
		_, err := NewTriageClient(Config{Provider: "claude"})
		assert.Error(t, err)
	})

	t.Run("unknown provider fails", func(t *testing.T) {
		_, err := NewTriageClient(Config{Provider: "gemini"})
		assert.Error(t, err)
	})
}

func TestNewAgentClient(t *testing.T) {
	client, err := NewAgentClient(Config{Provider: "claude", Workdir: "/tmp/ws"})
	require.NoError(t, err)
	assert.IsType(t, &ClaudeCLIClient{}, client)

	client, err = NewAgentClient(Config{Provider: "codex", Workdir: "/tmp/ws"})
	require.NoError(t, err)
	assert.IsType(t, &CodexCLIClient{}, client)

	_, err = NewAgentClient(Config{Provider: "other"})
	assert.Error(t, err)
}

func TestClaudeCLIClientArgs(t *testing.T) {
	t.Run("triage mode", func(t *testing.T) {
		client := NewClaudeCLIClient(Config{Provider: "claude"})
		args := client.args("the prompt")

		assert.Equal(t, []string{"-p", "the prompt", "--output-format", "json"}, args)
	})

	t.Run("model override", func(t *testing.T) {
		client := NewClaudeCLIClient(Config{Provider: "claude", Model: "opus"})
		args := client.args("p")

		assert.Contains(t, args, "--model")
		assert.Contains(t, args, "opus")
	})

	t.Run("investigation mode adds workspace flags", func(t *testing.T) {
		client := NewClaudeCLIClient(Config{
			Provider:  "claude",
			Workdir:   "/tmp/ws/repo",
			BudgetUSD: 0.5,
		})
		args := client.args("p")

		joined := strings.Join(args, " ")
		assert.Contains(t, joined, "--add-dir /tmp/ws/repo")
		assert.Contains(t, joined, "--max-budget-usd 0.5")
		assert.Contains(t, joined, "--allowedTools")
		// Workspace mode defaults the investigation model.
		assert.Contains(t, joined, "--model "+defaultInvestigationModel)
	})
}

func TestAnthropicClientComplete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotHeaders http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeaders = r.Header.Clone()
			fmt.Fprint(w, `{"content": [{"type": "text", "text": "[{\"repo\": \"a\", \"confidence\": 0.9}]"}]}`)
		}))
		defer server.Close()

		client := NewAnthropicClient(Config{Provider: "claude", APIKey: "test-key", BaseURL: server.URL})
		got, err := client.Complete(context.Background(), "rank these")
		require.NoError(t, err)

		assert.Equal(t, `[{"repo": "a", "confidence": 0.9}]`, got)
		assert.Equal(t, "test-key", gotHeaders.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, gotHeaders.Get("anthropic-version"))
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewAnthropicClient(Config{Provider: "claude", APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "p")
		assert.Error(t, err)
	})

	t.Run("transport failure is an error", func(t *testing.T) {
		client := NewAnthropicClient(Config{
			Provider: "claude",
			APIKey:   "k",
			BaseURL:  "http://127.0.0.1:1",
			Timeout:  time.Second,
		})
		_, err := client.Complete(context.Background(), "p")
		assert.Error(t, err)
	})

	t.Run("default model applied", func(t *testing.T) {
		client := NewAnthropicClient(Config{Provider: "claude", APIKey: "k"})
		assert.Equal(t, defaultTriageModel, client.Model())
	})
}
