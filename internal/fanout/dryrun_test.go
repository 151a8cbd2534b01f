package fanout

import (
	"context"
	"testing"

	"github.com/danielolaszy/metaissue/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDryRunService(t *testing.T) {
	service := &DryRunService{}
	orchestrator := newTestOrchestrator(t, service)

	report, err := orchestrator.Run(context.Background(), testMeta("Intro\n- [x] spec\n- [x] repo-a\n- [x] repo-b\nOutro"))
	require.NoError(t, err)

	assert.Equal(t, &models.IssueRef{Owner: "acme", Repo: "meta", Number: 1}, report.Spec.Ref)
	assert.Equal(t, []models.IssueRef{
		{Owner: "acme", Repo: "repo-a", Number: 2},
		{Owner: "acme", Repo: "repo-b", Number: 3},
	}, report.CreatedAgents())
	assert.Equal(t, report.Body, service.Body)
	assert.True(t, report.Updated)
}
