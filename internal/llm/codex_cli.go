package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// CodexCLIClient is the external-process backend for the codex CLI.
// Unlike claude, codex writes its final answer to a designated output file
// (--output-last-message); stdout is only a fallback when the file comes
// back empty. That difference is part of this variant's calling convention.
type CodexCLIClient struct {
	model   string
	timeout time.Duration
	workdir string
}

// NewCodexCLIClient creates a codex subprocess backend.
func NewCodexCLIClient(cfg Config) *CodexCLIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &CodexCLIClient{
		model:   cfg.Model,
		timeout: timeout,
		workdir: cfg.Workdir,
	}
}

// Complete runs `codex exec` and reads the answer back from the output file.
func (c *CodexCLIClient) Complete(ctx context.Context, prompt string) (string, error) {
	outputFile, err := os.CreateTemp("", "bug-basher-codex-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	outputPath := outputFile.Name()
	outputFile.Close()
	defer os.Remove(outputPath)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{"exec", prompt}
	if c.workdir != "" {
		args = append(args, "--cd", c.workdir)
	}
	args = append(args, "--color", "never")
	if c.model != "" {
		args = append(args, "--model", c.model)
	}
	args = append(args, "--output-last-message", outputPath)

	cmd := exec.CommandContext(ctx, "codex", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("codex CLI timed out after %v: %w", c.timeout, ctx.Err())
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("codex CLI not found: %w", err)
		}
		return "", fmt.Errorf("codex CLI execution failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	raw, err := os.ReadFile(outputPath)
	if err == nil && len(bytes.TrimSpace(raw)) > 0 {
		return strings.TrimSpace(string(raw)), nil
	}
	return strings.TrimSpace(stdout.String()), nil
}
