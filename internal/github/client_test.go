package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielolaszy/metaissue/internal/config"
	"github.com/danielolaszy/metaissue/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient starts a server with the given handler and returns a client
// pointed at it.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), config.GitHubConfig{
		Token:  "test-token",
		Domain: "github.com",
		APIURL: server.URL,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresToken(t *testing.T) {
	client, err := NewClient(context.Background(), config.GitHubConfig{})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestCreateIssue(t *testing.T) {
	var received map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/repo-a/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number": 42}`)
	})
	client := newTestClient(t, mux)

	ref, status, err := client.CreateIssue(context.Background(), "acme", "repo-a", models.IssueRequest{
		Title:  "[META 5] Upgrade runtime",
		Body:   "See meta issue",
		Labels: []string{"urgent", "team-x"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, &models.IssueRef{Owner: "acme", Repo: "repo-a", Number: 42}, ref)
	assert.Equal(t, "[META 5] Upgrade runtime", received["title"])
	assert.Equal(t, "See meta issue", received["body"])
	assert.Equal(t, []any{"urgent", "team-x"}, received["labels"])
}

func TestCreateIssueSendsEmptyLabelList(t *testing.T) {
	var received map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/repo-a/issues", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number": 1}`)
	})
	client := newTestClient(t, mux)

	_, _, err := client.CreateIssue(context.Background(), "acme", "repo-a", models.IssueRequest{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, []any{}, received["labels"])
}

func TestCreateIssueFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/missing/issues", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	client := newTestClient(t, mux)

	ref, status, err := client.CreateIssue(context.Background(), "acme", "missing", models.IssueRequest{Title: "t"})
	assert.Error(t, err)
	assert.Nil(t, ref)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, IsSuccess(status))
}

func TestUpdateIssueBody(t *testing.T) {
	var received map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/meta/issues/5", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		fmt.Fprint(w, `{"number": 5}`)
	})
	client := newTestClient(t, mux)

	err := client.UpdateIssueBody(context.Background(), "acme", "meta", 5, "new body")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"body": "new body"}, received)
}

func TestUpdateIssueBodyFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/meta/issues/5", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := newTestClient(t, mux)

	err := client.UpdateIssueBody(context.Background(), "acme", "meta", 5, "new body")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestIsSuccess(t *testing.T) {
	assert.True(t, IsSuccess(http.StatusCreated))
	assert.True(t, IsSuccess(http.StatusOK))
	assert.False(t, IsSuccess(http.StatusBadRequest))
	assert.False(t, IsSuccess(http.StatusInternalServerError))
	assert.False(t, IsSuccess(0))
}
