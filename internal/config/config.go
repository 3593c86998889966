// Package config holds the configuration for every pipeline component.
// The Config tree is constructed exactly once at the entry point and passed
// down explicitly; nothing in this package keeps process-wide mutable state.
//
// Resolution order: built-in defaults, then an optional YAML file, then
// environment variables. A .env file, when present, is loaded into the
// environment by the caller (godotenv) before Load runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration tree.
type Config struct {
	Backstage     Backstage     `yaml:"backstage"`
	Jira          Jira          `yaml:"jira"`
	GitHub        GitHub        `yaml:"github"`
	Slack         Slack         `yaml:"slack"`
	Triage        Triage        `yaml:"triage"`
	Investigation Investigation `yaml:"investigation"`
}

// Backstage configures the catalog client.
type Backstage struct {
	BaseURL            string        `yaml:"base_url"`
	Token              string        `yaml:"token"`
	Team               string        `yaml:"team"`
	OwnerGroup         string        `yaml:"owner_group"`
	DefaultGitHubSlugs []string      `yaml:"default_github_slugs"`
	CacheTTL           time.Duration `yaml:"cache_ttl"`
	UseLocalFile       bool          `yaml:"use_local_file"`
	LocalFilePath      string        `yaml:"local_file_path"`
}

// Jira configures the issue tracker client.
type Jira struct {
	BaseURL  string `yaml:"base_url"`
	Email    string `yaml:"email"`
	APIToken string `yaml:"api_token"`
}

// GitHub configures the source hosting client.
type GitHub struct {
	Token      string `yaml:"token"`
	DefaultOrg string `yaml:"default_org"`
}

// Slack configures the chat notification client.
type Slack struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// Triage configures the ranking stage.
type Triage struct {
	Provider        string  `yaml:"provider"`
	AnthropicAPIKey string  `yaml:"anthropic_api_key"`
	Model           string  `yaml:"model"`
	MaxRepos        int     `yaml:"max_repos"`
	MinConfidence   float64 `yaml:"min_confidence"`
	ForceSubprocess bool    `yaml:"force_subprocess"`
}

// Investigation configures cloning, agent invocation, and aggregation.
type Investigation struct {
	Provider                     string        `yaml:"provider"`
	Model                        string        `yaml:"model"`
	MaxBudgetUSD                 float64       `yaml:"max_budget_usd"`
	CloneDepth                   int           `yaml:"clone_depth"`
	CloneProtocol                string        `yaml:"clone_protocol"` // "https" or "ssh"
	CloneTimeout                 time.Duration `yaml:"clone_timeout"`
	AgentTimeout                 time.Duration `yaml:"agent_timeout"`
	MaxParallelAgents            int           `yaml:"max_parallel_agents"`
	HighConfidenceThreshold      float64       `yaml:"high_confidence_threshold"`
	UncertainConfidenceThreshold float64       `yaml:"uncertain_confidence_threshold"`
	GitHubToken                  string        `yaml:"github_token"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Backstage: Backstage{
			BaseURL:       "https://backstage.example.com/api/catalog",
			Team:          "team",
			CacheTTL:      time.Hour,
			UseLocalFile:  true,
			LocalFilePath: "backstage_fixture.json",
		},
		Jira: Jira{
			BaseURL: "https://jira.example.com",
		},
		GitHub: GitHub{
			DefaultOrg: "example-org",
		},
		Triage: Triage{
			Provider:      "codex",
			MaxRepos:      5,
			MinConfidence: 0.3,
		},
		Investigation: Investigation{
			Provider:                     "codex",
			MaxBudgetUSD:                 0.50,
			CloneDepth:                   100,
			CloneProtocol:                "https",
			CloneTimeout:                 120 * time.Second,
			AgentTimeout:                 300 * time.Second,
			MaxParallelAgents:            3,
			HighConfidenceThreshold:      0.8,
			UncertainConfidenceThreshold: 0.5,
		},
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. A missing file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Backstage.BaseURL, "BACKSTAGE_BASE_URL")
	setString(&c.Backstage.Token, "BACKSTAGE_TOKEN")
	setString(&c.Backstage.Team, "TEAM")
	setString(&c.Backstage.OwnerGroup, "BACKSTAGE_OWNER_GROUP")
	if csv := firstEnv("DEFAULT_GITHUB_SLUGS", "BACKSTAGE_DEFAULT_GITHUB_SLUGS"); csv != "" {
		c.Backstage.DefaultGitHubSlugs = splitCSV(csv)
	}
	setBool(&c.Backstage.UseLocalFile, "BACKSTAGE_USE_LOCAL_FILE")
	setString(&c.Backstage.LocalFilePath, "BACKSTAGE_LOCAL_FILE_PATH")
	if raw := os.Getenv("BACKSTAGE_CACHE_TTL_SECONDS"); raw != "" {
		if secs, err := strconv.ParseFloat(raw, 64); err == nil {
			c.Backstage.CacheTTL = time.Duration(secs * float64(time.Second))
		}
	}

	setString(&c.Jira.BaseURL, "JIRA_BASE_URL")
	setString(&c.Jira.Email, "JIRA_EMAIL")
	setString(&c.Jira.APIToken, "JIRA_API_TOKEN")

	setString(&c.GitHub.Token, "GITHUB_TOKEN")
	setString(&c.GitHub.DefaultOrg, "GITHUB_DEFAULT_ORG")

	setString(&c.Slack.BotToken, "SLACK_BOT_TOKEN")
	setString(&c.Slack.Channel, "SLACK_CHANNEL")

	setString(&c.Triage.Provider, "LLM_PROVIDER")
	setString(&c.Triage.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&c.Triage.Model, "TRIAGE_MODEL")

	setString(&c.Investigation.Provider, "LLM_PROVIDER")
	setString(&c.Investigation.Model, "INVESTIGATION_MODEL")
	setString(&c.Investigation.CloneProtocol, "CLONE_PROTOCOL")

	// Linkage fallbacks: only fill fields nothing else set explicitly.
	if c.Backstage.OwnerGroup == "" {
		c.Backstage.OwnerGroup = c.Backstage.Team
	}
	if c.Investigation.GitHubToken == "" {
		c.Investigation.GitHubToken = c.GitHub.Token
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		*dst = true
	default:
		*dst = false
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func splitCSV(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
