// Package triage ranks candidate repositories against a bug report using a
// pluggable reasoning backend, then filters, sorts, and caps the results.
package triage

import (
	"fmt"
	"strings"

	"bugbasher/internal/models"
)

// BuildPrompt renders the ranking prompt from the bug report and the
// candidate list.
func BuildPrompt(bug models.BugReport, repos []models.Repository) string {
	var lines []string

	lines = append(lines,
		"You are a bug triage assistant. Given a bug report and a list of repositories, "+
			"rank which repositories are most likely to contain the root cause.",
		"",
		"## Bug Report",
		fmt.Sprintf("**Key:** %s", bug.Key),
		fmt.Sprintf("**Summary:** %s", bug.Summary),
	)
	if bug.Description != "" {
		lines = append(lines, fmt.Sprintf("**Description:** %s", bug.Description))
	}
	if bug.Priority != "" {
		lines = append(lines, fmt.Sprintf("**Priority:** %s", bug.Priority))
	}
	if len(bug.Components) > 0 {
		lines = append(lines, fmt.Sprintf("**Components:** %s", strings.Join(bug.Components, ", ")))
	}
	if len(bug.Labels) > 0 {
		lines = append(lines, fmt.Sprintf("**Labels:** %s", strings.Join(bug.Labels, ", ")))
	}

	lines = append(lines, "", "## Repositories")
	for _, repo := range repos {
		var sb strings.Builder
		fmt.Fprintf(&sb, "- **%s**", repo.Name)
		if repo.Description != "" {
			fmt.Fprintf(&sb, ": %s", repo.Description)
		}
		var details []string
		if repo.GitHubSlug != "" {
			details = append(details, fmt.Sprintf("slug=%s", repo.GitHubSlug))
		}
		if repo.ComponentType != "" {
			details = append(details, fmt.Sprintf("type=%s", repo.ComponentType))
		}
		if len(repo.Tags) > 0 {
			details = append(details, fmt.Sprintf("tags=%s", strings.Join(repo.Tags, ",")))
		}
		if len(details) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(details, "; "))
		}
		lines = append(lines, sb.String())
	}

	lines = append(lines, "",
		`Respond with a JSON array of objects, each with "repo" (repository name), `+
			`"confidence" (0.0 to 1.0), and "reasoning" (brief explanation). `+
			"Sort by confidence descending. Only include repositories that might be relevant.")

	return strings.Join(lines, "\n")
}
