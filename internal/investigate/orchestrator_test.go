package investigate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"bugbasher/internal/config"
	"bugbasher/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubCloner creates real temp workspaces so cleanup can be observed.
type stubCloner struct {
	delay time.Duration
	fail  map[string]error

	mu       sync.Mutex
	inFlight int32
	maxSeen  int32
	parents  []string
}

func (s *stubCloner) Clone(ctx context.Context, slug string) (string, error) {
	cur := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		prev := atomic.LoadInt32(&s.maxSeen)
		if cur <= prev || atomic.CompareAndSwapInt32(&s.maxSeen, prev, cur) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if err, ok := s.fail[slug]; ok {
		return "", err
	}

	tmp, err := os.MkdirTemp("", "bug-basher-test-")
	if err != nil {
		return "", err
	}
	dest := filepath.Join(tmp, filepath.Base(slug))
	if err := os.Mkdir(dest, 0o755); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.parents = append(s.parents, tmp)
	s.mu.Unlock()
	return dest, nil
}

type stubAgent struct {
	results map[string]*models.InvestigationResult
}

func (s *stubAgent) Investigate(ctx context.Context, bug models.BugReport, repoName, dir string) *models.InvestigationResult {
	return s.results[repoName]
}

func catalog() []models.Repository {
	return []models.Repository{
		{Name: "checkout-service", GitHubSlug: "acme/checkout-service"},
		{Name: "payments-api", GitHubSlug: "acme/payments-api"},
		{Name: "cart-service", GitHubSlug: "acme/cart-service"},
		{Name: "no-slug-service"},
	}
}

func ranked(names ...string) []models.TriageResult {
	out := make([]models.TriageResult, 0, len(names))
	for _, n := range names {
		out = append(out, models.TriageResult{Repo: n, Confidence: 0.9})
	}
	return out
}

func TestInvestigateAll(t *testing.T) {
	logger := zap.NewNop()
	cfg := config.Investigation{MaxParallelAgents: 3}

	t.Run("results sorted by confidence descending", func(t *testing.T) {
		cloner := &stubCloner{}
		agent := &stubAgent{results: map[string]*models.InvestigationResult{
			"checkout-service": {Repo: "checkout-service", Confidence: 0.4},
			"payments-api":     {Repo: "payments-api", Confidence: 0.9},
			"cart-service":     {Repo: "cart-service", Confidence: 0.7},
		}}
		o := newOrchestratorWith(cloner, agent, cfg, logger)

		got := o.InvestigateAll(context.Background(), models.BugReport{Key: "BUY-1"},
			ranked("checkout-service", "payments-api", "cart-service"), catalog())

		require.Len(t, got, 3)
		assert.Equal(t, "payments-api", got[0].Repo)
		assert.Equal(t, "cart-service", got[1].Repo)
		assert.Equal(t, "checkout-service", got[2].Repo)
	})

	t.Run("workspaces removed after each unit", func(t *testing.T) {
		cloner := &stubCloner{}
		agent := &stubAgent{results: map[string]*models.InvestigationResult{
			"checkout-service": {Repo: "checkout-service", Confidence: 0.5},
		}}
		o := newOrchestratorWith(cloner, agent, cfg, logger)

		o.InvestigateAll(context.Background(), models.BugReport{}, ranked("checkout-service"), catalog())

		require.Len(t, cloner.parents, 1)
		_, err := os.Stat(cloner.parents[0])
		assert.True(t, os.IsNotExist(err), "workspace parent should be removed")
	})

	t.Run("candidate without clone address skipped", func(t *testing.T) {
		cloner := &stubCloner{}
		agent := &stubAgent{}
		o := newOrchestratorWith(cloner, agent, cfg, logger)

		got := o.InvestigateAll(context.Background(), models.BugReport{}, ranked("no-slug-service", "unknown-service"), catalog())

		assert.Empty(t, got)
		assert.Zero(t, cloner.maxSeen, "no clone should have been attempted")
	})

	t.Run("clone failure skips unit, siblings survive", func(t *testing.T) {
		cloner := &stubCloner{fail: map[string]error{"acme/checkout-service": errors.New("auth failed")}}
		agent := &stubAgent{results: map[string]*models.InvestigationResult{
			"payments-api": {Repo: "payments-api", Confidence: 0.6},
		}}
		o := newOrchestratorWith(cloner, agent, cfg, logger)

		got := o.InvestigateAll(context.Background(), models.BugReport{}, ranked("checkout-service", "payments-api"), catalog())

		require.Len(t, got, 1)
		assert.Equal(t, "payments-api", got[0].Repo)
	})

	t.Run("nil agent verdicts dropped", func(t *testing.T) {
		cloner := &stubCloner{}
		agent := &stubAgent{results: map[string]*models.InvestigationResult{}}
		o := newOrchestratorWith(cloner, agent, cfg, logger)

		got := o.InvestigateAll(context.Background(), models.BugReport{}, ranked("checkout-service", "payments-api"), catalog())
		assert.Empty(t, got)
	})

	t.Run("in-flight units capped at configured maximum", func(t *testing.T) {
		cloner := &stubCloner{delay: 20 * time.Millisecond}
		agent := &stubAgent{}
		o := newOrchestratorWith(cloner, agent, config.Investigation{MaxParallelAgents: 1}, logger)

		o.InvestigateAll(context.Background(), models.BugReport{}, ranked("checkout-service", "payments-api", "cart-service"), catalog())

		assert.EqualValues(t, 1, cloner.maxSeen)
	})

	t.Run("zero maximum treated as one", func(t *testing.T) {
		cloner := &stubCloner{delay: 10 * time.Millisecond}
		agent := &stubAgent{}
		o := newOrchestratorWith(cloner, agent, config.Investigation{MaxParallelAgents: 0}, logger)

		o.InvestigateAll(context.Background(), models.BugReport{}, ranked("checkout-service", "payments-api"), catalog())

		assert.EqualValues(t, 1, cloner.maxSeen)
	})
}
