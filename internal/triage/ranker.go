package triage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bugbasher/internal/config"
	"bugbasher/internal/llm"
	"bugbasher/internal/models"
)

// triageTimeout bounds a single ranking exchange. Ranking is a cheap,
// single-shot call compared to investigation.
const triageTimeout = 30 * time.Second

// Ranker asks a reasoning backend to rank candidates against a bug report.
type Ranker struct {
	client llm.Client
	cfg    config.Triage
	logger *zap.Logger
}

// NewRanker constructs a Ranker for the configured backend. Configuration
// misuse (unknown provider, missing mandatory API key) fails here, before
// any pipeline work starts.
func NewRanker(cfg config.Triage, logger *zap.Logger) (*Ranker, error) {
	client, err := llm.NewTriageClient(llm.Config{
		Provider:        cfg.Provider,
		APIKey:          cfg.AnthropicAPIKey,
		Model:           cfg.Model,
		Timeout:         triageTimeout,
		ForceSubprocess: cfg.ForceSubprocess,
	})
	if err != nil {
		return nil, err
	}
	return &Ranker{client: client, cfg: cfg, logger: logger}, nil
}

// NewRankerWithClient wires an explicit backend, used in tests.
func NewRankerWithClient(client llm.Client, cfg config.Triage, logger *zap.Logger) *Ranker {
	return &Ranker{client: client, cfg: cfg, logger: logger}
}

// Rank returns the confidence-sorted, capped candidate list. Backend
// failures are not errors to the caller: they degrade to an empty list,
// which downstream treats as "no relevant repositories identified".
func (r *Ranker) Rank(ctx context.Context, bug models.BugReport, repos []models.Repository) []models.TriageResult {
	prompt := BuildPrompt(bug, repos)

	raw, err := r.client.Complete(ctx, prompt)
	if err != nil {
		r.logger.Error("triage backend failed",
			zap.String("bug", bug.Key),
			zap.Error(err))
		return nil
	}

	return ParseResponse(r.logger, raw, r.cfg)
}
