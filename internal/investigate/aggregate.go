package investigate

import (
	"bugbasher/internal/config"
	"bugbasher/internal/models"
)

// Aggregate collapses the sorted verdict list into the single recommended
// action. Pure function: no I/O, no logging, no mutation of its inputs.
//
// Decision table on the best verdict's confidence c, thresholds inclusive
// at their lower bound:
//
//	no results                  -> comment_summary, confidence 0, no fix
//	c >= high and usable fix    -> pr
//	c >= high, no usable fix    -> comment_root_cause
//	high > c >= uncertain       -> comment_uncertain
//	c < uncertain               -> comment_summary
func Aggregate(bug models.BugReport, results []models.InvestigationResult, cfg config.Investigation) models.AggregatedFindings {
	if len(results) == 0 {
		return models.AggregatedFindings{
			Bug:     bug,
			Results: results,
			Action: models.Action{
				Type:       models.ActionCommentSummary,
				Confidence: 0.0,
				HasFix:     false,
			},
		}
	}

	best := results[0]
	hasFix := best.HasFix()

	var actionType models.ActionType
	switch {
	case best.Confidence >= cfg.HighConfidenceThreshold && hasFix:
		actionType = models.ActionPR
	case best.Confidence >= cfg.HighConfidenceThreshold:
		actionType = models.ActionCommentRootCause
	case best.Confidence >= cfg.UncertainConfidenceThreshold:
		actionType = models.ActionCommentUncertain
	default:
		actionType = models.ActionCommentSummary
	}

	return models.AggregatedFindings{
		Bug:        bug,
		Results:    results,
		BestResult: &best,
		Action: models.Action{
			Type:       actionType,
			Confidence: best.Confidence,
			HasFix:     hasFix,
		},
	}
}
