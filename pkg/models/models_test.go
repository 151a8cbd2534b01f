package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaIssueOwnerRepo(t *testing.T) {
	testCases := []struct {
		name          string
		repositoryURL string
		expectedOwner string
		expectedRepo  string
		expectedOK    bool
	}{
		{
			name:          "github.com api url",
			repositoryURL: "https://api.github.com/repos/acme/platform",
			expectedOwner: "acme",
			expectedRepo:  "platform",
			expectedOK:    true,
		},
		{
			name:          "enterprise api url",
			repositoryURL: "https://github.example.com/api/v3/repos/acme/platform",
			expectedOwner: "acme",
			expectedRepo:  "platform",
			expectedOK:    true,
		},
		{
			name:          "missing repos segment",
			repositoryURL: "https://github.com/acme/platform",
			expectedOK:    false,
		},
		{
			name:       "empty",
			expectedOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			owner, repo, ok := MetaIssue{RepositoryURL: tc.repositoryURL}.OwnerRepo()
			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expectedOwner, owner)
			assert.Equal(t, tc.expectedRepo, repo)
		})
	}
}

func TestMetaIssueDecodesGitHubPayload(t *testing.T) {
	payload := `{
		"number": 12,
		"title": "Roll out v2",
		"body": "Intro",
		"html_url": "https://github.com/acme/platform/issues/12",
		"repository_url": "https://api.github.com/repos/acme/platform",
		"labels": [{"name": "triage", "color": "ededed"}, {"name": "urgent"}]
	}`

	var meta MetaIssue
	require.NoError(t, json.Unmarshal([]byte(payload), &meta))

	assert.Equal(t, 12, meta.Number)
	assert.Equal(t, "Roll out v2", meta.Title)
	assert.Equal(t, "https://github.com/acme/platform/issues/12", meta.HTMLURL)
	assert.Equal(t, []string{"triage", "urgent"}, meta.LabelNames())
}

func TestIssueRefFormatting(t *testing.T) {
	ref := IssueRef{Owner: "acme", Repo: "repo-a", Number: 7}

	assert.Equal(t, "acme/repo-a/issues/7", ref.Path())
	assert.Equal(t, "https://github.com/acme/repo-a/issues/7", ref.URL("https://github.com"))
	assert.Equal(t, "https://github.com/acme/repo-a/issues/7", ref.URL("https://github.com/"))
}
