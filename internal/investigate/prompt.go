// Package investigate clones ranked candidate repositories, runs the
// reasoning agent against each checkout under bounded concurrency, and
// aggregates the verdicts into a single action decision.
package investigate

import (
	"fmt"
	"strings"

	"bugbasher/internal/models"
)

// BuildPrompt renders the investigation prompt for one repository. The
// response schema is spelled out verbatim; parse.go depends on it.
func BuildPrompt(bug models.BugReport, repoName string) string {
	var lines []string

	lines = append(lines,
		"You are a senior software engineer investigating a production bug. "+
			"You have access to a cloned repository. Explore the codebase to find "+
			"the root cause and, if possible, propose a fix.",
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

	lines = append(lines,
		"",
		fmt.Sprintf("## Repository: %s", repoName),
		"",
		"Investigate this repository for the root cause of the bug above. "+
			"Use `git log`, `Grep`, `Glob`, and `Read` to explore the code. "+
			"Look at recent commits, relevant source files, error handling, "+
			"and test coverage.",
		"",
		"Respond with a single JSON object (no markdown fences) with these fields:\n"+
			"{\n"+
			"  \"root_cause_found\": bool,\n"+
			"  \"confidence\": float (0.0-1.0),\n"+
			"  \"root_cause\": \"description of root cause\",\n"+
			"  \"evidence\": [\"list of evidence found\"],\n"+
			"  \"recent_suspect_commits\": [\"commit hashes\"],\n"+
			"  \"proposed_fix\": {\n"+
			"    \"description\": \"what the fix does\",\n"+
			"    \"files_changed\": [{\"path\": \"src/file.go\", \"diff\": \"unified diff\"}]\n"+
			"  },\n"+
			"  \"next_steps\": [\"suggested follow-up actions\"]\n"+
			"}",
	)

	return strings.Join(lines, "\n")
}
