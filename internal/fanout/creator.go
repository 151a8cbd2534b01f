// Package fanout turns a meta issue's checklist into sub-issues and rewrites
// the meta issue with an overview of what was created.
package fanout

import (
	"context"
	"fmt"

	"github.com/danielolaszy/metaissue/internal/github"
	"github.com/danielolaszy/metaissue/internal/logging"
	"github.com/danielolaszy/metaissue/pkg/models"
)

// IssueService is the subset of the GitHub API the orchestrator needs.
type IssueService interface {
	CreateIssue(ctx context.Context, owner string, repo string, req models.IssueRequest) (*models.IssueRef, int, error)
	UpdateIssueBody(ctx context.Context, owner string, repo string, number int, body string) error
}

// Result is the outcome of a single create call: Ref is set when the issue
// was created, Err when it was not.
type Result struct {
	Repo string
	Ref  *models.IssueRef
	Err  error
}

// Created reports whether the issue exists.
func (r Result) Created() bool {
	return r.Err == nil && r.Ref != nil
}

// Creator creates issues in repositories of a single owner.
type Creator struct {
	Service IssueService
	Owner   string
}

// Create performs exactly one create call for req. Failures are logged and
// returned inside the Result; Create never panics or returns an error.
func (c *Creator) Create(ctx context.Context, req models.IssueRequest) Result {
	ref, status, err := c.Service.CreateIssue(ctx, c.Owner, req.Repo, req)
	if err == nil && !github.IsSuccess(status) {
		err = fmt.Errorf("unexpected status %d", status)
	}
	if err == nil && ref == nil {
		err = fmt.Errorf("no issue returned")
	}
	if err != nil {
		logging.Error("failed to create issue",
			"repository", c.Owner+"/"+req.Repo,
			"status_code", status,
			"error", err)
		return Result{Repo: req.Repo, Err: err}
	}

	logging.Info("created issue",
		"repository", c.Owner+"/"+req.Repo,
		"issue_number", ref.Number)
	return Result{Repo: req.Repo, Ref: ref}
}
