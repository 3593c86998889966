// Package jira talks to the JIRA Cloud REST API: reading bug issues into
// the pipeline's report model and posting ADF comments back.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bugbasher/internal/config"
	"bugbasher/internal/models"
)

const issueFields = "summary,description,labels,priority,reporter,components,created"

// APIError is a non-success reply from the JIRA API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("JIRA API error %d: %s", e.StatusCode, e.Detail)
}

// Client is a JIRA REST client with basic authentication.
type Client struct {
	cfg        config.Jira
	httpClient *http.Client
}

// NewClient creates a JIRA client.
func NewClient(cfg config.Jira) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type issueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string          `json:"summary"`
		Description json.RawMessage `json:"description"`
		Labels      []string        `json:"labels"`
		Priority    *struct {
			Name string `json:"name"`
		} `json:"priority"`
		Reporter *struct {
			DisplayName  string `json:"displayName"`
			EmailAddress string `json:"emailAddress"`
		} `json:"reporter"`
		Components []struct {
			Name string `json:"name"`
		} `json:"components"`
		Created string `json:"created"`
	} `json:"fields"`
}

// GetIssue fetches one issue and maps it to a BugReport. The description
// is flattened from ADF to plain text; priority falls back to P3 when the
// field is absent.
func (c *Client) GetIssue(ctx context.Context, key string) (models.BugReport, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s?fields=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(key), url.QueryEscape(issueFields))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.BugReport{}, fmt.Errorf("failed to build issue request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.BugReport{}, fmt.Errorf("issue request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.BugReport{}, fmt.Errorf("failed to read issue response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.BugReport{}, &APIError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}

	var issue issueResponse
	if err := json.Unmarshal(body, &issue); err != nil {
		return models.BugReport{}, fmt.Errorf("failed to decode issue response: %w", err)
	}

	bug := models.BugReport{
		Key:         issue.Key,
		Summary:     issue.Fields.Summary,
		Description: flattenDescription(issue.Fields.Description),
		Labels:      issue.Fields.Labels,
		Priority:    "P3",
		Created:     issue.Fields.Created,
		URL:         fmt.Sprintf("%s/browse/%s", strings.TrimRight(c.cfg.BaseURL, "/"), issue.Key),
	}
	if issue.Fields.Priority != nil && issue.Fields.Priority.Name != "" {
		bug.Priority = issue.Fields.Priority.Name
	}
	if r := issue.Fields.Reporter; r != nil {
		if r.DisplayName != "" {
			bug.Reporter = r.DisplayName
		} else {
			bug.Reporter = r.EmailAddress
		}
	}
	for _, component := range issue.Fields.Components {
		bug.Components = append(bug.Components, component.Name)
	}
	return bug, nil
}

// AddComment posts an ADF comment on an issue.
func (c *Client) AddComment(ctx context.Context, key string, doc Document) error {
	payload, err := json.Marshal(map[string]any{"body": doc})
	if err != nil {
		return fmt.Errorf("failed to encode comment: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s/comment",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build comment request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("comment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")
}

// flattenDescription turns an ADF description into plain text. A bare
// string value passes through; anything unrecognized becomes empty.
func flattenDescription(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var node Node
	if err := json.Unmarshal(raw, &node); err != nil {
		return ""
	}
	return adfToText(node)
}

func adfToText(node Node) string {
	if node.Type == "text" {
		return node.Text
	}
	parts := make([]string, 0, len(node.Content))
	for _, child := range node.Content {
		parts = append(parts, adfToText(child))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
