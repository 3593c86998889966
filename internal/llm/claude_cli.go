package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const defaultInvestigationModel = "claude-sonnet-4-6"

// investigationAllowedTools is the tool allowlist handed to the claude CLI
// when it runs against a cloned workspace: read-only exploration plus
// git history.
const investigationAllowedTools = "Bash(git log:*),Read,Grep,Glob"

// ClaudeCLIClient is the external-process backend for the claude CLI.
// It executes `claude -p <prompt> --output-format json` and unwraps the
// one-level {"result": "<text>"} envelope the CLI emits.
type ClaudeCLIClient struct {
	model     string
	timeout   time.Duration
	workdir   string
	budgetUSD float64
}

// NewClaudeCLIClient creates a claude subprocess backend. When Workdir is
// set the client runs in investigation mode: the workspace is attached via
// --add-dir, exploration tools are allowlisted, and the spend ceiling is
// passed through, with the investigation model as the default.
func NewClaudeCLIClient(cfg Config) *ClaudeCLIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	model := cfg.Model
	if model == "" && cfg.Workdir != "" {
		model = defaultInvestigationModel
	}

	return &ClaudeCLIClient{
		model:     model,
		timeout:   timeout,
		workdir:   cfg.Workdir,
		budgetUSD: cfg.BudgetUSD,
	}
}

// Complete runs the CLI and returns the unwrapped text answer.
func (c *ClaudeCLIClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "claude", c.args(prompt)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("claude CLI timed out after %v: %w", c.timeout, ctx.Err())
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("claude CLI not found: %w", err)
		}
		return "", fmt.Errorf("claude CLI execution failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	return unwrapResultEnvelope(strings.TrimSpace(stdout.String())), nil
}

// args builds the CLI invocation for the current mode.
func (c *ClaudeCLIClient) args(prompt string) []string {
	args := []string{"-p", prompt, "--output-format", "json"}
	if c.model != "" {
		args = append(args, "--model", c.model)
	}
	if c.workdir != "" {
		args = append(args,
			"--allowedTools", investigationAllowedTools,
			"--add-dir", c.workdir,
			"--max-budget-usd", strconv.FormatFloat(c.budgetUSD, 'f', -1, 64),
		)
	}
	return args
}

// unwrapResultEnvelope peels one level of {"result": "<text>"} wrapping.
// Anything that is not exactly that shape passes through untouched.
func unwrapResultEnvelope(raw string) string {
	var envelope struct {
		Result *string `json:"result"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err == nil && envelope.Result != nil {
		return *envelope.Result
	}
	return raw
}
