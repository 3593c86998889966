package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List repositories for the configured team and slug filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := loadCatalog(cmd.Context())
		if err != nil {
			return err
		}

		scope := fmt.Sprintf("team=%s", cfg.Backstage.Team)
		if len(cfg.Backstage.DefaultGitHubSlugs) > 0 {
			scope += fmt.Sprintf(", slug_filters=%s", strings.Join(cfg.Backstage.DefaultGitHubSlugs, ","))
		}
		fmt.Printf("Found %d repositories (%s):\n\n", len(repos), scope)

		sort.Slice(repos, func(i, j int) bool { return repos[i].Name < repos[j].Name })
		for _, repo := range repos {
			slug := repo.GitHubSlug
			if slug == "" {
				slug = "(no slug)"
			}
			fmt.Printf("  %-40s %s\n", repo.Name, slug)
		}
		return nil
	},
}
