// Package models defines the immutable value types that flow through the
// triage and investigation pipeline. Every entity is created once per run
// and never mutated; confidence-carrying types validate their range at
// construction time.
package models

import "fmt"

// BugReport describes the defect under investigation. It is produced by the
// tracker client or assembled from CLI flags and is read-only thereafter.
type BugReport struct {
	Key         string   `json:"key"`
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Reporter    string   `json:"reporter,omitempty"`
	Components  []string `json:"components,omitempty"`
	Created     string   `json:"created,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// Repository is one candidate from the catalog. GitHubSlug is the clone
// address ("org/repo") and may be absent; candidates without it are skipped
// by the orchestrator.
type Repository struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	GitHubSlug    string   `json:"github_slug,omitempty"`
	ComponentType string   `json:"component_type,omitempty"`
	Lifecycle     string   `json:"lifecycle,omitempty"`
	Owner         string   `json:"owner,omitempty"`
	System        string   `json:"system,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// TriageResult is one ranked candidate. The confidence-descending order of a
// []TriageResult is semantic, not incidental.
type TriageResult struct {
	Repo       string  `json:"repo"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// NewTriageResult validates the confidence range before constructing the
// result. 0.0 and 1.0 are both valid.
func NewTriageResult(repo string, confidence float64, reasoning string) (TriageResult, error) {
	if err := ValidateConfidence(confidence); err != nil {
		return TriageResult{}, err
	}
	return TriageResult{Repo: repo, Confidence: confidence, Reasoning: reasoning}, nil
}

// FileChange is a single file touched by a proposed fix.
type FileChange struct {
	Path string `json:"path"`
	Diff string `json:"diff,omitempty"`
}

// ProposedFix is a human-readable description plus the ordered file changes
// that implement it.
type ProposedFix struct {
	Description  string       `json:"description,omitempty"`
	FilesChanged []FileChange `json:"files_changed,omitempty"`
}

// HasFix reports whether the fix is actually usable. A fix object with an
// empty file list does not count.
func (p *ProposedFix) HasFix() bool {
	return p != nil && len(p.FilesChanged) > 0
}

// InvestigationResult is the verdict for one investigated repository.
type InvestigationResult struct {
	Repo                 string       `json:"repo"`
	RootCauseFound       bool         `json:"root_cause_found"`
	Confidence           float64      `json:"confidence"`
	RootCause            string       `json:"root_cause,omitempty"`
	Evidence             []string     `json:"evidence,omitempty"`
	RecentSuspectCommits []string     `json:"recent_suspect_commits,omitempty"`
	ProposedFix          *ProposedFix `json:"proposed_fix,omitempty"`
	NextSteps            []string     `json:"next_steps,omitempty"`
}

// Validate checks the invariants a well-formed verdict must hold.
func (r *InvestigationResult) Validate() error {
	return ValidateConfidence(r.Confidence)
}

// HasFix reports whether the verdict carries a usable fix.
func (r *InvestigationResult) HasFix() bool {
	return r.ProposedFix.HasFix()
}

// ActionType is the discrete decision derived from aggregated verdicts.
type ActionType string

const (
	ActionPR               ActionType = "pr"
	ActionCommentRootCause ActionType = "comment_root_cause"
	ActionCommentUncertain ActionType = "comment_uncertain"
	ActionCommentSummary   ActionType = "comment_summary"
)

// Action records the decision, the confidence that drove it, and whether a
// concrete fix was available.
type Action struct {
	Type       ActionType `json:"action_type"`
	Confidence float64    `json:"confidence"`
	HasFix     bool       `json:"has_fix"`
}

// AggregatedFindings is the pipeline's terminal artifact.
type AggregatedFindings struct {
	Bug        BugReport             `json:"bug"`
	Results    []InvestigationResult `json:"results"`
	BestResult *InvestigationResult  `json:"best_result,omitempty"`
	Action     Action                `json:"action"`
}

// ValidateConfidence rejects values outside [0.0, 1.0].
func ValidateConfidence(v float64) error {
	if v < 0.0 || v > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %v", v)
	}
	return nil
}
