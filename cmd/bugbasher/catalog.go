package main

import (
	"context"
	"strings"

	"bugbasher/internal/backstage"
	"bugbasher/internal/config"
	"bugbasher/internal/jira"
	"bugbasher/internal/models"
)

// loadCatalog fetches the team's repositories, already narrowed to the
// configured scope.
func loadCatalog(ctx context.Context) ([]models.Repository, error) {
	client := backstage.NewClient(cfg.Backstage, logger)
	repos, err := client.GetRepositories(ctx, "", false)
	if err != nil {
		return nil, err
	}
	return filterRepositories(repos, cfg.Backstage), nil
}

// filterRepositories narrows the catalog to the configured team and slug
// filters. A repository passes when the team name appears in its owner or
// any slug filter appears in its GitHub slug; with neither configured,
// everything passes.
func filterRepositories(repos []models.Repository, bc config.Backstage) []models.Repository {
	team := strings.ToLower(strings.TrimSpace(bc.Team))
	slugFilters := make([]string, 0, len(bc.DefaultGitHubSlugs))
	for _, s := range bc.DefaultGitHubSlugs {
		slugFilters = append(slugFilters, strings.ToLower(s))
	}

	if team == "" && len(slugFilters) == 0 {
		return repos
	}

	var filtered []models.Repository
	for _, repo := range repos {
		owner := strings.ToLower(repo.Owner)
		slug := strings.ToLower(repo.GitHubSlug)

		match := team != "" && strings.Contains(owner, team)
		for _, token := range slugFilters {
			if match {
				break
			}
			match = strings.Contains(slug, token)
		}
		if match {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}

// bugFlags is the shared flag set for building a report without a
// tracker round trip.
type bugFlags struct {
	summary     string
	description string
	components  []string
	priority    string
}

// fetchBug resolves the report to work on: from the tracker when only a
// key is given, or straight from the flags.
func fetchBug(ctx context.Context, key string, flags bugFlags) (models.BugReport, error) {
	if key != "" && flags.summary == "" {
		return jira.NewClient(cfg.Jira).GetIssue(ctx, key)
	}

	if key == "" {
		key = "BUG-0000"
	}
	return models.BugReport{
		Key:         key,
		Summary:     flags.summary,
		Description: flags.description,
		Components:  flags.components,
		Priority:    flags.priority,
	}, nil
}
