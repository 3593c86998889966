package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bugbasher/internal/config"
	"bugbasher/internal/models"
)

func TestFilterRepositories(t *testing.T) {
	repos := []models.Repository{
		{Name: "checkout-service", Owner: "group:buy-team", GitHubSlug: "acme/checkout-service"},
		{Name: "payments-api", Owner: "group:pay-team", GitHubSlug: "acme/payments-api"},
		{Name: "legacy-cart", Owner: "", GitHubSlug: "oldcorp/legacy-cart"},
	}

	t.Run("no filters passes everything", func(t *testing.T) {
		got := filterRepositories(repos, config.Backstage{})
		assert.Len(t, got, 3)
	})

	t.Run("team matches owner substring", func(t *testing.T) {
		got := filterRepositories(repos, config.Backstage{Team: "buy-team"})
		assert.Len(t, got, 1)
		assert.Equal(t, "checkout-service", got[0].Name)
	})

	t.Run("team matching is case insensitive", func(t *testing.T) {
		got := filterRepositories(repos, config.Backstage{Team: "BUY-TEAM"})
		assert.Len(t, got, 1)
	})

	t.Run("slug filter matches slug substring", func(t *testing.T) {
		got := filterRepositories(repos, config.Backstage{DefaultGitHubSlugs: []string{"oldcorp/"}})
		assert.Len(t, got, 1)
		assert.Equal(t, "legacy-cart", got[0].Name)
	})

	t.Run("team or slug filter is a union", func(t *testing.T) {
		got := filterRepositories(repos, config.Backstage{
			Team:               "buy-team",
			DefaultGitHubSlugs: []string{"payments"},
		})
		assert.Len(t, got, 2)
	})

	t.Run("no matches yields empty", func(t *testing.T) {
		got := filterRepositories(repos, config.Backstage{Team: "search-team"})
		assert.Empty(t, got)
	})
}
