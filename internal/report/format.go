package report

import (
	"fmt"
	"strings"

	"bugbasher/internal/jira"
	"bugbasher/internal/models"
	"bugbasher/internal/slack"
)

const (
	maxPRTitleRunes      = 72
	maxSlackSectionChars = 250
)

// FormatPRTitle renders the pull request title, truncated to fit the
// repository's title column.
func FormatPRTitle(findings models.AggregatedFindings) string {
	title := fmt.Sprintf("[Bug Basher] %s: %s", findings.Bug.Key, findings.Bug.Summary)
	runes := []rune(title)
	if len(runes) <= maxPRTitleRunes {
		return title
	}
	return string(runes[:maxPRTitleRunes-3]) + "..."
}

// FormatPRBody renders the pull request description in markdown.
func FormatPRBody(findings models.AggregatedFindings) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Bug\n\n[%s](%s): %s\n\n", findings.Bug.Key, findings.Bug.URL, findings.Bug.Summary)

	if best := findings.BestResult; best != nil {
		fmt.Fprintf(&b, "## Root Cause\n\n%s\n\n", best.RootCause)
		if len(best.Evidence) > 0 {
			b.WriteString("## Evidence\n\n")
			for _, e := range best.Evidence {
				fmt.Fprintf(&b, "- %s\n", e)
			}
			b.WriteString("\n")
		}
		if best.ProposedFix != nil && best.ProposedFix.Description != "" {
			fmt.Fprintf(&b, "## Fix\n\n%s\n\n", best.ProposedFix.Description)
		}
		fmt.Fprintf(&b, "**Confidence:** %s\n\n", percent(best.Confidence))
	}

	b.WriteString("---\n*This pull request was auto-generated by Bug Basher. Review carefully before merging.*\n")
	return b.String()
}

// FormatJiraComment renders the investigation findings as an ADF
// document. The next-steps section appears only for the uncertain
// outcome; a PR link section appears when prURL is set.
func FormatJiraComment(findings models.AggregatedFindings, prURL string) jira.Document {
	sections := []jira.Section{{
		Heading: "Bug Basher Investigation",
		Body:    summaryLine(findings),
	}}

	if best := findings.BestResult; best != nil {
		if best.RootCause != "" {
			sections = append(sections, jira.Section{Heading: "Root Cause", Body: best.RootCause})
		}
		if len(best.Evidence) > 0 {
			sections = append(sections, jira.Section{
				Heading: "Evidence",
				Body:    strings.Join(best.Evidence, "; "),
			})
		}
		if findings.Action.Type == models.ActionCommentUncertain && len(best.NextSteps) > 0 {
			sections = append(sections, jira.Section{
				Heading: "Suggested Next Steps",
				Body:    strings.Join(best.NextSteps, "; "),
			})
		}
	}

	if prURL != "" {
		sections = append(sections, jira.Section{Heading: "Proposed Fix", Body: prURL})
	}
	return jira.BuildDocument(sections)
}

// FormatSlackMessage renders the notification text and blocks. The
// fallback text always carries the bug key; the root-cause section is
// truncated so the whole section stays within Slack's display budget.
func FormatSlackMessage(findings models.AggregatedFindings, prURL string) (string, []slack.Block) {
	text := fmt.Sprintf("Bug Basher findings for %s: %s", findings.Bug.Key, actionLabel(findings.Action.Type))

	blocks := []slack.Block{
		slack.Header("Bug Basher: " + findings.Bug.Key),
		slack.Section(summaryLine(findings)),
	}

	if best := findings.BestResult; best != nil {
		blocks = append(blocks, slack.FieldsSection(
			"*Repository:* "+best.Repo,
			"*Confidence:* "+percent(best.Confidence),
		))
		if best.RootCause != "" {
			label := "*Root Cause:*\n"
			blocks = append(blocks, slack.Section(label+truncateTo(best.RootCause, maxSlackSectionChars-1-len(label))))
		}
	}

	if prURL != "" {
		blocks = append(blocks, slack.Section("*Proposed fix:* "+prURL))
	}
	blocks = append(blocks, slack.Context(findings.Bug.URL))
	return text, blocks
}

func summaryLine(findings models.AggregatedFindings) string {
	best := findings.BestResult
	if best == nil {
		return fmt.Sprintf("No conclusive findings for %s.", findings.Bug.Key)
	}
	return fmt.Sprintf("%s in %s (confidence %s).",
		actionLabel(findings.Action.Type), best.Repo, percent(best.Confidence))
}

func actionLabel(t models.ActionType) string {
	switch t {
	case models.ActionPR:
		return "Fix proposed"
	case models.ActionCommentRootCause:
		return "Root cause identified"
	case models.ActionCommentUncertain:
		return "Possible root cause"
	default:
		return "Investigation summary"
	}
}

func percent(confidence float64) string {
	return fmt.Sprintf("%.0f%%", confidence*100)
}

func truncateTo(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
