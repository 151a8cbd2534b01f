// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/danielolaszy/metaissue/internal/config"
	"github.com/danielolaszy/metaissue/internal/logging"
	"github.com/danielolaszy/metaissue/pkg/models"
	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"
)

// Client encapsulates the GitHub API client.
type Client struct {
	client *github.Client
}

// NewClient creates a new GitHub API client from the given configuration.
// Every request carries the token as a bearer credential. Enterprise hosts are
// addressed through their /api/v3/ endpoint.
func NewClient(ctx context.Context, cfg config.GitHubConfig) (*Client, error) {
	token := cfg.Token
	if token == "" {
		return nil, fmt.Errorf("github token not found in configuration")
	}

	apiURL := cfg.ResolvedAPIURL()

	logging.Info("github configuration",
		"domain", cfg.Domain,
		"api_url", apiURL,
		"token", logging.MaskSensitive(token))

	// Create the oauth2 client
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	client := github.NewClient(tc)

	parsedURL, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid github api url: %w", err)
	}
	client.BaseURL = parsedURL
	client.UploadURL = parsedURL

	return &Client{client: client}, nil
}

// CreateIssue creates an issue in owner/repo and returns a reference to it
// together with the HTTP status of the call. The status is zero when the
// request never reached the server.
func (c *Client) CreateIssue(ctx context.Context, owner string, repo string, req models.IssueRequest) (*models.IssueRef, int, error) {
	labels := req.Labels
	if labels == nil {
		labels = []string{}
	}

	logging.Debug("creating issue",
		"repository", owner+"/"+repo,
		"title", req.Title,
		"labels", labels)

	issue, resp, err := c.client.Issues.Create(ctx, owner, repo, &github.IssueRequest{
		Title:  github.String(req.Title),
		Body:   github.String(req.Body),
		Labels: &labels,
	})
	status := statusCode(resp)
	if err != nil {
		return nil, status, fmt.Errorf("failed to create issue in %s/%s: %w", owner, repo, err)
	}

	return &models.IssueRef{
		Owner:  owner,
		Repo:   repo,
		Number: issue.GetNumber(),
	}, status, nil
}

// UpdateIssueBody replaces the body of issue owner/repo#number.
func (c *Client) UpdateIssueBody(ctx context.Context, owner string, repo string, number int, body string) error {
	logging.Debug("updating issue body",
		"repository", owner+"/"+repo,
		"issue_number", number,
		"body_length", len(body))

	_, resp, err := c.client.Issues.Edit(ctx, owner, repo, number, &github.IssueRequest{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to update issue %s/%s#%d (status %d): %w", owner, repo, number, statusCode(resp), err)
	}
	return nil
}

func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

// IsSuccess reports whether an HTTP status denotes a successful call.
func IsSuccess(status int) bool {
	return status > 0 && status < http.StatusBadRequest
}
