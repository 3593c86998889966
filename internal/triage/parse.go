package triage

import (
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"bugbasher/internal/config"
	"bugbasher/internal/llm"
	"bugbasher/internal/models"
)

// ParseResponse turns raw ranking text into a validated, confidence-sorted,
// thresholded, size-capped result list. It never fails: malformed input
// yields an empty list, and one bad entry never discards the rest.
func ParseResponse(logger *zap.Logger, raw string, cfg config.Triage) []models.TriageResult {
	extracted := llm.ExtractJSONArray(raw)
	if extracted == "" {
		logger.Warn("no JSON array found in triage response",
			zap.String("excerpt", llm.Excerpt(raw)))
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(extracted), &items); err != nil {
		logger.Warn("failed to parse triage JSON",
			zap.Error(err),
			zap.String("excerpt", llm.Excerpt(extracted)))
		return nil
	}

	var results []models.TriageResult
	for _, item := range items {
		var entry struct {
			Repo       *string  `json:"repo"`
			Confidence *float64 `json:"confidence"`
			Reasoning  string   `json:"reasoning"`
		}
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		if entry.Repo == nil || entry.Confidence == nil {
			continue
		}
		result, err := models.NewTriageResult(*entry.Repo, *entry.Confidence, entry.Reasoning)
		if err != nil {
			continue
		}
		if result.Confidence < cfg.MinConfidence {
			continue
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	if cfg.MaxRepos > 0 && len(results) > cfg.MaxRepos {
		results = results[:cfg.MaxRepos]
	}
	return results
}
