// Package report turns aggregated findings into side effects: a pull
// request when there is a usable fix, a tracker comment, and a chat
// notification.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"bugbasher/internal/githubclient"
	"bugbasher/internal/jira"
	"bugbasher/internal/models"
	"bugbasher/internal/slack"
)

// Tracker posts comments on the bug's issue.
type Tracker interface {
	AddComment(ctx context.Context, key string, doc jira.Document) error
}

// SourceHost performs the repository operations needed to open a pull
// request.
type SourceHost interface {
	DefaultBranch(ctx context.Context, owner, repo string) (string, error)
	BranchSHA(ctx context.Context, owner, repo, branch string) (string, error)
	CreateBranch(ctx context.Context, owner, repo, branch, fromSHA string) error
	GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, string, error)
	UpdateFile(ctx context.Context, owner, repo, path, content, message, branch, sha string) error
	CreatePullRequest(ctx context.Context, owner, repo, title, body, head, base string) (string, error)
}

// Notifier posts chat messages.
type Notifier interface {
	PostMessage(ctx context.Context, channel, text string, blocks []slack.Block) error
}

// Reporter publishes findings through the configured collaborators. Any
// of them may be nil; the corresponding step is skipped.
type Reporter struct {
	tracker  Tracker
	host     SourceHost
	notifier Notifier
	channel  string
	logger   *zap.Logger
}

// NewReporter creates a Reporter.
func NewReporter(tracker Tracker, host SourceHost, notifier Notifier, channel string, logger *zap.Logger) *Reporter {
	return &Reporter{
		tracker:  tracker,
		host:     host,
		notifier: notifier,
		channel:  channel,
		logger:   logger,
	}
}

// CreatePRFromFindings opens a pull request carrying the best verdict's
// proposed fix. It returns an empty URL without error when there is no
// usable fix or the repository has no known clone slug. A file missing on
// the new branch is created rather than updated.
func (r *Reporter) CreatePRFromFindings(ctx context.Context, findings models.AggregatedFindings, catalog []models.Repository) (string, error) {
	best := findings.BestResult
	if r.host == nil || best == nil || !best.HasFix() {
		return "", nil
	}

	slug := ""
	for _, repo := range catalog {
		if repo.Name == best.Repo && repo.GitHubSlug != "" {
			slug = repo.GitHubSlug
			break
		}
	}
	if slug == "" {
		r.logger.Warn("no repository slug for proposed fix, skipping pull request",
			zap.String("repo", best.Repo))
		return "", nil
	}
	owner, repo, ok := strings.Cut(slug, "/")
	if !ok {
		return "", fmt.Errorf("malformed repository slug %q", slug)
	}

	base, err := r.host.DefaultBranch(ctx, owner, repo)
	if err != nil {
		return "", err
	}
	baseSHA, err := r.host.BranchSHA(ctx, owner, repo, base)
	if err != nil {
		return "", err
	}

	branch := fmt.Sprintf("bug-basher/%s-%d", findings.Bug.Key, time.Now().Unix())
	if err := r.host.CreateBranch(ctx, owner, repo, branch, baseSHA); err != nil {
		return "", err
	}

	message := fmt.Sprintf("Fix %s: %s", findings.Bug.Key, best.ProposedFix.Description)
	for _, change := range best.ProposedFix.FilesChanged {
		sha := ""
		_, existingSHA, err := r.host.GetFileContent(ctx, owner, repo, change.Path, branch)
		switch {
		case err == nil:
			sha = existingSHA
		case githubclient.IsNotFound(err):
			// New file on this branch.
		default:
			return "", err
		}
		if err := r.host.UpdateFile(ctx, owner, repo, change.Path, change.Diff, message, branch, sha); err != nil {
			return "", err
		}
	}

	return r.host.CreatePullRequest(ctx, owner, repo,
		FormatPRTitle(findings), FormatPRBody(findings), branch, base)
}

// ReportFindings publishes the findings everywhere configured and returns
// the pull request URL, if one was opened. The tracker comment is always
// attempted; its failure is logged but never blocks the chat
// notification.
func (r *Reporter) ReportFindings(ctx context.Context, findings models.AggregatedFindings, catalog []models.Repository) string {
	var prURL string
	if findings.Action.Type == models.ActionPR {
		url, err := r.CreatePRFromFindings(ctx, findings, catalog)
		if err != nil {
			r.logger.Error("failed to create pull request",
				zap.String("key", findings.Bug.Key),
				zap.Error(err))
		} else {
			prURL = url
		}
	}

	if r.tracker != nil {
		doc := FormatJiraComment(findings, prURL)
		if err := r.tracker.AddComment(ctx, findings.Bug.Key, doc); err != nil {
			r.logger.Error("failed to comment on issue",
				zap.String("key", findings.Bug.Key),
				zap.Error(err))
		}
	}

	if r.notifier != nil && r.channel != "" {
		text, blocks := FormatSlackMessage(findings, prURL)
		if err := r.notifier.PostMessage(ctx, r.channel, text, blocks); err != nil {
			r.logger.Error("failed to post chat notification",
				zap.String("channel", r.channel),
				zap.Error(err))
		}
	}

	return prURL
}
