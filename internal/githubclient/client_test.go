package githubclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v68/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient points a real API client at a local handler.
func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gh := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	gh.BaseURL = base
	return newClientWith(gh)
}

func TestDefaultBranch(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/checkout-service", r.URL.Path)
		io.WriteString(w, `{"name": "checkout-service", "default_branch": "main"}`)
	}))

	branch, err := c.DefaultBranch(context.Background(), "acme", "checkout-service")
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestBranchSHA(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/git/ref")
		assert.Contains(t, r.URL.Path, "heads/main")
		io.WriteString(w, `{"ref": "refs/heads/main", "object": {"sha": "abc123"}}`)
	}))

	sha, err := c.BranchSHA(context.Background(), "acme", "checkout-service", "main")
	require.NoError(t, err)
	assert.Equal(t, "abc123", sha)
}

func TestCreateBranch(t *testing.T) {
	// The create-ref endpoint takes a flat {ref, sha} payload.
	var got struct {
		Ref string `json:"ref"`
		SHA string `json:"sha"`
	}
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"ref": "refs/heads/bug-basher/BUY-1-1"}`)
	}))

	err := c.CreateBranch(context.Background(), "acme", "checkout-service", "bug-basher/BUY-1-1", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/bug-basher/BUY-1-1", got.Ref)
	assert.Equal(t, "abc123", got.SHA)
}

func TestGetFileContent(t *testing.T) {
	t.Run("decodes content and returns blob sha", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("package main\n"))
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "main", r.URL.Query().Get("ref"))
			fmt.Fprintf(w, `{"type": "file", "encoding": "base64", "sha": "blob1", "content": %q}`, encoded)
		}))

		content, sha, err := c.GetFileContent(context.Background(), "acme", "checkout-service", "main.go", "main")
		require.NoError(t, err)
		assert.Equal(t, "package main\n", content)
		assert.Equal(t, "blob1", sha)
	})

	t.Run("missing file satisfies IsNotFound", func(t *testing.T) {
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"message": "Not Found"}`)
		}))

		_, _, err := c.GetFileContent(context.Background(), "acme", "checkout-service", "ghost.go", "main")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestUpdateFile(t *testing.T) {
	t.Run("empty sha creates", func(t *testing.T) {
		var got github.RepositoryContentFileOptions
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"content": {"path": "new.go"}}`)
		}))

		err := c.UpdateFile(context.Background(), "acme", "checkout-service", "new.go", "body", "add file", "branch", "")
		require.NoError(t, err)
		assert.Equal(t, "add file", got.GetMessage())
		assert.Equal(t, "branch", got.GetBranch())
		assert.Nil(t, got.SHA)
	})

	t.Run("sha updates existing blob", func(t *testing.T) {
		var got github.RepositoryContentFileOptions
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&got)
			io.WriteString(w, `{"content": {"path": "old.go"}}`)
		}))

		err := c.UpdateFile(context.Background(), "acme", "checkout-service", "old.go", "body", "fix", "branch", "blob1")
		require.NoError(t, err)
		assert.Equal(t, "blob1", got.GetSHA())
	})
}

func TestCreatePullRequest(t *testing.T) {
	var got github.NewPullRequest
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"number": 42, "html_url": "https://github.com/acme/checkout-service/pull/42"}`)
	}))

	prURL, err := c.CreatePullRequest(context.Background(), "acme", "checkout-service",
		"[Bug Basher] BUY-1: fix", "body", "bug-basher/BUY-1-1", "main")
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/acme/checkout-service/pull/42", prURL)
	assert.Equal(t, "[Bug Basher] BUY-1: fix", got.GetTitle())
	assert.Equal(t, "bug-basher/BUY-1-1", got.GetHead())
	assert.Equal(t, "main", got.GetBase())
}
