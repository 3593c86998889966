package investigate

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"bugbasher/internal/config"
	"bugbasher/internal/models"
)

// RepoCloner acquires one repository into a temp workspace.
type RepoCloner interface {
	Clone(ctx context.Context, slug string) (string, error)
}

// Investigator produces a verdict for one cloned repository, or nil.
type Investigator interface {
	Investigate(ctx context.Context, bug models.BugReport, repoName, dir string) *models.InvestigationResult
}

// Orchestrator fans investigation units out over the ranked candidates.
// Cloning and agent invocation are both expensive external operations, so
// in-flight units are capped by a counting semaphore sized to the
// configured maximum; one unit's failure never aborts or leaks into its
// siblings.
type Orchestrator struct {
	cloner RepoCloner
	agent  Investigator
	cfg    config.Investigation
	logger *zap.Logger
}

// NewOrchestrator wires the real cloner and agent. Provider validation
// happens here, synchronously, before any fan-out.
func NewOrchestrator(cfg config.Investigation, logger *zap.Logger) (*Orchestrator, error) {
	agent, err := NewAgent(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		cloner: NewCloner(cfg),
		agent:  agent,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// newOrchestratorWith wires explicit collaborators, used in tests.
func newOrchestratorWith(cloner RepoCloner, agent Investigator, cfg config.Investigation, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{cloner: cloner, agent: agent, cfg: cfg, logger: logger}
}

// InvestigateAll runs clone+investigate for every ranked candidate and
// returns the successful verdicts sorted confidence-descending. Candidates
// without a resolvable clone address are skipped with a warning. The
// launch order of units is not the output order; the list is re-sorted
// before return.
func (o *Orchestrator) InvestigateAll(ctx context.Context, bug models.BugReport, ranked []models.TriageResult, catalog []models.Repository) []models.InvestigationResult {
	slugs := make(map[string]string, len(catalog))
	for _, repo := range catalog {
		if repo.GitHubSlug != "" {
			slugs[repo.Name] = repo.GitHubSlug
		}
	}

	maxParallel := o.cfg.MaxParallelAgents
	if maxParallel <= 0 {
		maxParallel = 1
	}
	sem := semaphore.NewWeighted(int64(maxParallel))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []models.InvestigationResult
	)

	for _, candidate := range ranked {
		slug, ok := slugs[candidate.Repo]
		if !ok {
			o.logger.Warn("no clone address for repository, skipping",
				zap.String("repo", candidate.Repo))
			continue
		}

		wg.Add(1)
		go func(repoName, slug string) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			if result := o.investigateOne(ctx, bug, repoName, slug); result != nil {
				mu.Lock()
				results = append(results, *result)
				mu.Unlock()
			}
		}(candidate.Repo, slug)
	}

	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results
}

// investigateOne is a single unit of work: acquire, investigate, release.
// The workspace is removed unconditionally when the unit finishes,
// whatever the outcome.
func (o *Orchestrator) investigateOne(ctx context.Context, bug models.BugReport, repoName, slug string) *models.InvestigationResult {
	dir, err := o.cloner.Clone(ctx, slug)
	if err != nil {
		o.logger.Error("failed to clone repository",
			zap.String("repo", repoName),
			zap.String("slug", slug),
			zap.Error(err))
		return nil
	}
	defer os.RemoveAll(filepath.Dir(dir))

	return o.agent.Investigate(ctx, bug, repoName, dir)
}
