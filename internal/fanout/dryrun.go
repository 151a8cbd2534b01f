package fanout

import (
	"context"
	"net/http"

	"github.com/danielolaszy/metaissue/internal/logging"
	"github.com/danielolaszy/metaissue/pkg/models"
)

// DryRunService satisfies IssueService without calling GitHub. Created issues
// get sequential numbers starting at 1 and the last body update is kept in Body.
type DryRunService struct {
	next int
	Body string
}

// CreateIssue logs req and returns a fabricated reference.
func (d *DryRunService) CreateIssue(_ context.Context, owner string, repo string, req models.IssueRequest) (*models.IssueRef, int, error) {
	d.next++
	logging.Info("dry run: would create issue",
		"repository", owner+"/"+repo,
		"title", req.Title,
		"labels", req.Labels)
	return &models.IssueRef{Owner: owner, Repo: repo, Number: d.next}, http.StatusCreated, nil
}

// UpdateIssueBody records body.
func (d *DryRunService) UpdateIssueBody(_ context.Context, owner string, repo string, number int, body string) error {
	logging.Info("dry run: would update issue",
		"repository", owner+"/"+repo,
		"issue_number", number)
	d.Body = body
	return nil
}
