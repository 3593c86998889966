package investigate

import (
	"context"

	"go.uber.org/zap"

	"bugbasher/internal/config"
	"bugbasher/internal/llm"
	"bugbasher/internal/models"
)

// Agent runs the reasoning agent against one cloned workspace and parses
// its verdict. Investigation always uses the subprocess backend: the agent
// needs filesystem access to the checkout.
type Agent struct {
	cfg    config.Investigation
	logger *zap.Logger
}

// NewAgent validates the provider up front; an unrecognized one is a
// configuration error, not a per-unit failure.
func NewAgent(cfg config.Investigation, logger *zap.Logger) (*Agent, error) {
	if _, err := llm.NormalizeProvider(cfg.Provider); err != nil {
		return nil, err
	}
	return &Agent{cfg: cfg, logger: logger}, nil
}

// Investigate returns the verdict for one repository, or nil when the unit
// yielded no usable signal. Agent-not-found, non-zero exit, timeout, and
// unparseable output are all equally non-fatal: logged, nil returned.
func (a *Agent) Investigate(ctx context.Context, bug models.BugReport, repoName, dir string) *models.InvestigationResult {
	client, err := llm.NewAgentClient(llm.Config{
		Provider:  a.cfg.Provider,
		Model:     a.cfg.Model,
		Timeout:   a.cfg.AgentTimeout,
		Workdir:   dir,
		BudgetUSD: a.cfg.MaxBudgetUSD,
	})
	if err != nil {
		a.logger.Error("failed to build agent backend", zap.Error(err))
		return nil
	}

	raw, err := client.Complete(ctx, BuildPrompt(bug, repoName))
	if err != nil {
		a.logger.Error("investigation agent failed",
			zap.String("repo", repoName),
			zap.Error(err))
		return nil
	}

	return ParseResponse(a.logger, raw, repoName)
}
