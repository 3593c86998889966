package investigate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"bugbasher/internal/config"
)

// Acquisition failure sentinels. Each clone failure is a distinct,
// checkable condition for the caller to log; none of them is retried.
var (
	ErrGitNotFound  = errors.New("git not found")
	ErrCloneTimeout = errors.New("clone timed out")
)

// Cloner shallow-clones repositories into isolated temp workspaces.
type Cloner struct {
	cfg config.Investigation
}

// NewCloner creates a Cloner.
func NewCloner(cfg config.Investigation) *Cloner {
	return &Cloner{cfg: cfg}
}

// Clone checks out slug into a fresh temp directory and returns the
// checkout path. The checkout lives one level below the temp root; the
// caller removes the parent directory when the unit of work finishes. Any
// failure removes the partial workspace before returning.
func (c *Cloner) Clone(ctx context.Context, slug string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "bug-basher-")
	if err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}
	dest := filepath.Join(tmpDir, path.Base(slug))

	ctx, cancel := context.WithTimeout(ctx, c.cfg.CloneTimeout)
	defer cancel()

	depth := c.cfg.CloneDepth
	if depth <= 0 {
		depth = 100
	}
	cmd := exec.CommandContext(ctx, "git",
		"clone",
		"--depth", strconv.Itoa(depth),
		"--single-branch",
		c.CloneURL(slug),
		dest,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.RemoveAll(tmpDir)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %v", ErrCloneTimeout, c.cfg.CloneTimeout)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrGitNotFound
		}
		return "", fmt.Errorf("clone failed: %s", strings.TrimSpace(stderr.String()))
	}

	return dest, nil
}

// CloneURL builds the fetch address for a slug. The ssh protocol always
// wins over a configured token: when selected, the token is ignored
// entirely in favor of ssh addressing.
func (c *Cloner) CloneURL(slug string) string {
	if strings.EqualFold(c.cfg.CloneProtocol, "ssh") {
		return fmt.Sprintf("git@github.com:%s.git", slug)
	}
	if c.cfg.GitHubToken != "" {
		return fmt.Sprintf("https://x-access-token:%s@github.com/%s.git", c.cfg.GitHubToken, slug)
	}
	return fmt.Sprintf("https://github.com/%s.git", slug)
}
