// Package githubclient wraps the GitHub REST API operations the pipeline
// needs to turn a proposed fix into a pull request.
package githubclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v68/github"

	"bugbasher/internal/config"
)

// Client performs branch, content, and pull request operations on a
// repository.
type Client struct {
	gh *github.Client
}

// NewClient creates a client authenticated with the configured token.
func NewClient(cfg config.GitHub) *Client {
	return &Client{gh: github.NewClient(nil).WithAuthToken(cfg.Token)}
}

// newClientWith wires an explicit API client, used in tests.
func newClientWith(gh *github.Client) *Client {
	return &Client{gh: gh}
}

// IsNotFound reports whether err is a 404 from the GitHub API.
func IsNotFound(err error) bool {
	var respErr *github.ErrorResponse
	return errors.As(err, &respErr) &&
		respErr.Response != nil &&
		respErr.Response.StatusCode == http.StatusNotFound
}

// DefaultBranch returns the repository's default branch name.
func (c *Client) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}
	return r.GetDefaultBranch(), nil
}

// BranchSHA returns the commit sha at the head of branch.
func (c *Client) BranchSHA(ctx context.Context, owner, repo, branch string) (string, error) {
	ref, _, err := c.gh.Git.GetRef(ctx, owner, repo, "heads/"+branch)
	if err != nil {
		return "", fmt.Errorf("failed to resolve branch %s: %w", branch, err)
	}
	return ref.GetObject().GetSHA(), nil
}

// CreateBranch creates a new branch pointing at fromSHA.
func (c *Client) CreateBranch(ctx context.Context, owner, repo, branch, fromSHA string) error {
	_, _, err := c.gh.Git.CreateRef(ctx, owner, repo, &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.String(fromSHA)},
	})
	if err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	return nil
}

// GetFileContent returns the decoded content and blob sha of a file at
// ref. A missing file surfaces as an error satisfying IsNotFound.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, string, error) {
	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path,
		&github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", "", fmt.Errorf("failed to get %s: %w", path, err)
	}
	if file == nil {
		return "", "", fmt.Errorf("%s is not a file", path)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return content, file.GetSHA(), nil
}

// UpdateFile commits content to path on branch. An empty sha creates the
// file; a non-empty sha replaces the existing blob.
func (c *Client) UpdateFile(ctx context.Context, owner, repo, path, content, message, branch, sha string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: []byte(content),
		Branch:  github.String(branch),
	}

	var err error
	if sha == "" {
		_, _, err = c.gh.Repositories.CreateFile(ctx, owner, repo, path, opts)
	} else {
		opts.SHA = github.String(sha)
		_, _, err = c.gh.Repositories.UpdateFile(ctx, owner, repo, path, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// CreatePullRequest opens a pull request and returns its HTML URL.
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo, title, body, head, base string) (string, error) {
	pr, _, err := c.gh.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: github.String(title),
		Body:  github.String(body),
		Head:  github.String(head),
		Base:  github.String(base),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create pull request: %w", err)
	}
	return pr.GetHTMLURL(), nil
}
