package investigate

import (
	"encoding/json"

	"go.uber.org/zap"

	"bugbasher/internal/llm"
	"bugbasher/internal/models"
)

// ParseResponse turns raw agent output into a validated verdict, or nil
// when the output yields no usable signal. Missing optional fields are
// coerced to safe defaults; a file-change entry without a path is dropped
// from the fix without failing the parse; an out-of-range confidence fails
// the whole verdict because the aggregator's decision rides on it.
func ParseResponse(logger *zap.Logger, raw, repoName string) *models.InvestigationResult {
	extracted := llm.ExtractJSONObject(raw)
	if extracted == "" {
		logger.Warn("no JSON object found in investigation response",
			zap.String("repo", repoName),
			zap.String("excerpt", llm.Excerpt(raw)))
		return nil
	}

	var payload struct {
		RootCauseFound       bool     `json:"root_cause_found"`
		Confidence           float64  `json:"confidence"`
		RootCause            string   `json:"root_cause"`
		Evidence             []string `json:"evidence"`
		RecentSuspectCommits []string `json:"recent_suspect_commits"`
		ProposedFix          *struct {
			Description  string            `json:"description"`
			FilesChanged []json.RawMessage `json:"files_changed"`
		} `json:"proposed_fix"`
		NextSteps []string `json:"next_steps"`
	}
	if err := json.Unmarshal([]byte(extracted), &payload); err != nil {
		logger.Warn("failed to parse investigation JSON",
			zap.String("repo", repoName),
			zap.Error(err),
			zap.String("excerpt", llm.Excerpt(extracted)))
		return nil
	}

	var fix *models.ProposedFix
	if payload.ProposedFix != nil {
		fix = &models.ProposedFix{Description: payload.ProposedFix.Description}
		for _, rawChange := range payload.ProposedFix.FilesChanged {
			var change models.FileChange
			if err := json.Unmarshal(rawChange, &change); err != nil || change.Path == "" {
				continue
			}
			fix.FilesChanged = append(fix.FilesChanged, change)
		}
	}

	result := &models.InvestigationResult{
		Repo:                 repoName,
		RootCauseFound:       payload.RootCauseFound,
		Confidence:           payload.Confidence,
		RootCause:            payload.RootCause,
		Evidence:             payload.Evidence,
		RecentSuspectCommits: payload.RecentSuspectCommits,
		ProposedFix:          fix,
		NextSteps:            payload.NextSteps,
	}
	if err := result.Validate(); err != nil {
		logger.Warn("discarding investigation verdict",
			zap.String("repo", repoName),
			zap.Error(err))
		return nil
	}
	return result
}
