// Package models defines data structures shared across the application.
package models

import (
	"fmt"
	"regexp"
	"strings"
)

// repositoryURLPattern extracts owner and repository name from an API
// repository URL such as https://api.github.com/repos/owner/repo.
var repositoryURLPattern = regexp.MustCompile(`https.*/repos/([^/]*)/(.*)`)

// Label is a GitHub label as it appears in an issue payload.
type Label struct {
	Name string `json:"name"`
}

// MetaIssue represents the tracking issue whose body drives a run.
type MetaIssue struct {
	// Number is the issue number in GitHub (e.g., 42)
	Number int `json:"number"`

	// Title is the issue's title
	Title string `json:"title"`

	// Body is the markdown body holding the checklist
	Body string `json:"body"`

	// HTMLURL is the browser link to the issue
	HTMLURL string `json:"html_url"`

	// RepositoryURL is the API URL of the repository the issue lives in
	RepositoryURL string `json:"repository_url"`

	// Labels is the ordered list of labels attached to the issue
	Labels []Label `json:"labels"`
}

// LabelNames returns the names of the issue's labels in their original order.
func (m MetaIssue) LabelNames() []string {
	names := make([]string, 0, len(m.Labels))
	for _, label := range m.Labels {
		names = append(names, label.Name)
	}
	return names
}

// OwnerRepo derives the owner and repository name from RepositoryURL.
// ok is false when the URL does not have the expected shape.
func (m MetaIssue) OwnerRepo() (owner string, repo string, ok bool) {
	match := repositoryURLPattern.FindStringSubmatch(m.RepositoryURL)
	if match == nil || match[1] == "" || match[2] == "" {
		return "", "", false
	}
	return match[1], match[2], true
}

// IssueRequest describes an issue to be created in a repository owned by the
// meta issue's owner.
type IssueRequest struct {
	Repo   string
	Title  string
	Body   string
	Labels []string
}

// IssueRef identifies an issue that was successfully created.
type IssueRef struct {
	Owner  string
	Repo   string
	Number int
}

// Path returns the issue identifier in the form owner/repo/issues/number.
func (r IssueRef) Path() string {
	return fmt.Sprintf("%s/%s/issues/%d", r.Owner, r.Repo, r.Number)
}

// URL returns the browser link for the issue on the given server,
// e.g. https://github.com/owner/repo/issues/7.
func (r IssueRef) URL(serverURL string) string {
	return strings.TrimSuffix(serverURL, "/") + "/" + r.Path()
}
