// Package backstage reads the service catalog, either from a live
// Backstage instance or from a local JSON fixture, and maps component
// entities to the pipeline's repository model.
package backstage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"bugbasher/internal/config"
	"bugbasher/internal/models"
)

// slugAnnotation is the catalog annotation that carries the GitHub slug.
const slugAnnotation = "github.com/project-slug"

// APIError is a non-200 reply from the catalog API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backstage API error %d: %s", e.StatusCode, e.Detail)
}

// ErrDataSource marks local-fixture failures: missing file, invalid JSON,
// or a top-level value that is not an array.
var ErrDataSource = errors.New("backstage data source error")

// EntityMetadata is the metadata block of a catalog entity.
type EntityMetadata struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Annotations map[string]string `json:"annotations"`
	Tags        []string          `json:"tags"`
}

// EntitySpec is the spec block of a catalog entity.
type EntitySpec struct {
	Type      string `json:"type"`
	Lifecycle string `json:"lifecycle"`
	Owner     string `json:"owner"`
	System    string `json:"system"`
}

// Entity is a Backstage catalog entity, reduced to the fields the
// pipeline reads.
type Entity struct {
	Metadata EntityMetadata `json:"metadata"`
	Spec     EntitySpec     `json:"spec"`
}

// FromEntity maps a catalog entity to a Repository. The GitHub slug comes
// from the project-slug annotation and may be empty.
func FromEntity(e Entity) models.Repository {
	return models.Repository{
		Name:          e.Metadata.Name,
		Description:   e.Metadata.Description,
		GitHubSlug:    e.Metadata.Annotations[slugAnnotation],
		ComponentType: e.Spec.Type,
		Lifecycle:     e.Spec.Lifecycle,
		Owner:         e.Spec.Owner,
		System:        e.Spec.System,
		Tags:          e.Metadata.Tags,
	}
}

type cacheEntry struct {
	repos   []models.Repository
	fetched time.Time
}

// Client fetches production components for an owner group. Results are
// cached per owner for the configured TTL; the cache is safe for
// concurrent use.
type Client struct {
	cfg        config.Backstage
	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewClient creates a catalog client.
func NewClient(cfg config.Backstage, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		cache:      make(map[string]cacheEntry),
	}
}

// GetRepositories returns the production components owned by ownerGroup,
// falling back to the configured owner group when empty. bypassCache
// forces a fresh fetch; the result still replaces the cache entry.
func (c *Client) GetRepositories(ctx context.Context, ownerGroup string, bypassCache bool) ([]models.Repository, error) {
	owner := ownerGroup
	if owner == "" {
		owner = c.cfg.OwnerGroup
	}

	if !bypassCache {
		c.mu.Lock()
		entry, ok := c.cache[owner]
		c.mu.Unlock()
		if ok && time.Since(entry.fetched) < c.cfg.CacheTTL {
			c.logger.Debug("catalog cache hit", zap.String("owner", owner))
			return entry.repos, nil
		}
	}

	var (
		entities []Entity
		err      error
	)
	if c.cfg.UseLocalFile {
		entities, err = c.loadEntitiesFromFile()
	} else {
		entities, err = c.fetchEntities(ctx, owner)
	}
	if err != nil {
		return nil, err
	}

	production := make([]models.Repository, 0, len(entities))
	for _, entity := range entities {
		repo := FromEntity(entity)
		if strings.EqualFold(repo.Lifecycle, "production") {
			production = append(production, repo)
		}
	}
	if excluded := len(entities) - len(production); excluded > 0 {
		c.logger.Info("filtered non-production entities",
			zap.Int("excluded", excluded),
			zap.String("owner", owner))
	}

	c.mu.Lock()
	c.cache[owner] = cacheEntry{repos: production, fetched: time.Now()}
	c.mu.Unlock()

	return production, nil
}

func (c *Client) loadEntitiesFromFile() ([]Entity, error) {
	data, err := os.ReadFile(c.cfg.LocalFilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: local file not found: %s", ErrDataSource, c.cfg.LocalFilePath)
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in %s: %v", ErrDataSource, c.cfg.LocalFilePath, err)
	}
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("%w: %s must contain a JSON array", ErrDataSource, c.cfg.LocalFilePath)
	}

	var entities []Entity
	if err := json.Unmarshal(raw, &entities); err != nil {
		return nil, fmt.Errorf("%w: invalid entity in %s: %v", ErrDataSource, c.cfg.LocalFilePath, err)
	}
	return entities, nil
}

func (c *Client) fetchEntities(ctx context.Context, owner string) ([]Entity, error) {
	query := url.Values{}
	query.Add("filter", "kind=Component")
	query.Add("filter", "spec.owner=group:"+owner)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/entities?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}

	var entities []Entity
	if err := json.Unmarshal(body, &entities); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return entities, nil
}
