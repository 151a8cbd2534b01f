package fanout

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/danielolaszy/metaissue/internal/checklist"
	"github.com/danielolaszy/metaissue/internal/config"
	"github.com/danielolaszy/metaissue/internal/logging"
	"github.com/danielolaszy/metaissue/pkg/models"
)

// ErrNoChecklist is returned in strict mode when the body pattern does not
// yield a checklist.
var ErrNoChecklist = errors.New("no issue creation list identified")

// Orchestrator drives a single fan-out run.
type Orchestrator struct {
	Service         IssueService
	Owner           string
	Repo            string
	LabelsToExclude []string
	SpecLabels      []string
	BodyPattern     *regexp.Regexp
	Overview        Overview
	// Strict turns a missing checklist into ErrNoChecklist instead of a no-op.
	Strict bool
}

// Report describes what a run did.
type Report struct {
	Skipped bool
	Spec    *Result
	Agents  []Result
	Body    string
	Updated bool
}

// CreatedAgents returns the references of the sub-issues that were created,
// in creation order.
func (r *Report) CreatedAgents() []models.IssueRef {
	var refs []models.IssueRef
	for _, result := range r.Agents {
		if result.Created() {
			refs = append(refs, *result.Ref)
		}
	}
	return refs
}

// New builds an orchestrator from resolved inputs.
func New(service IssueService, resolved *config.Resolved, serverURL string, strict bool) *Orchestrator {
	return &Orchestrator{
		Service:         service,
		Owner:           resolved.Owner,
		Repo:            resolved.Repo,
		LabelsToExclude: resolved.LabelsToExclude,
		SpecLabels:      resolved.SpecLabels,
		BodyPattern:     resolved.BodyPattern,
		Overview: Overview{
			ServerURL:     serverURL,
			BadgeTemplate: resolved.BadgeTemplate,
		},
		Strict: strict,
	}
}

// Run creates the spec issue and sub-issues requested by meta's checklist and
// rewrites meta's body. Calls are made one at a time; a failed create is
// skipped and the run continues. Only a malformed checklist line, or a
// missing checklist in strict mode, is returned as an error.
func (o *Orchestrator) Run(ctx context.Context, meta models.MetaIssue) (*Report, error) {
	doc, ok := checklist.Extract(meta.Body, o.BodyPattern)
	if !ok {
		logging.Warn("no issue creation list identified, skipping execution",
			"issue_number", meta.Number)
		if o.Strict {
			return nil, ErrNoChecklist
		}
		return &Report{Skipped: true}, nil
	}

	entries, err := doc.Entries()
	if err != nil {
		return nil, fmt.Errorf("failed to read checklist of issue #%d: %w", meta.Number, err)
	}
	// A block without checked lines, such as a generated overview, is left alone.
	if len(entries) == 0 {
		logging.Info("no checked entries in checklist, skipping execution",
			"issue_number", meta.Number)
		return &Report{Skipped: true}, nil
	}
	repos, needsSpec := checklist.Partition(entries)
	labels := ExcludeLabels(meta.LabelNames(), o.LabelsToExclude)
	br := checklist.LineBreak(meta.Body)

	logging.Info("processing meta issue",
		"issue_number", meta.Number,
		"repositories", repos,
		"needs_spec", needsSpec,
		"labels", labels)

	creator := &Creator{Service: o.Service, Owner: o.Owner}
	report := &Report{}

	var specRef *models.IssueRef
	if needsSpec {
		specLabels := make([]string, 0, len(labels)+len(o.SpecLabels))
		specLabels = append(specLabels, labels...)
		specLabels = append(specLabels, o.SpecLabels...)

		result := creator.Create(ctx, models.IssueRequest{
			Repo:   o.Repo,
			Title:  fmt.Sprintf("[META %d] Spec: %s", meta.Number, meta.Title),
			Body:   "See meta issue for the description:" + br + "- [ ] " + meta.HTMLURL,
			Labels: specLabels,
		})
		report.Spec = &result
		if result.Created() {
			specRef = &models.IssueRef{Owner: o.Owner, Repo: o.Repo, Number: result.Ref.Number}
		}
	}

	body := o.subIssueBody(meta, specRef, br)
	for _, repo := range repos {
		result := creator.Create(ctx, models.IssueRequest{
			Repo:   repo,
			Title:  fmt.Sprintf("[META %d] %s", meta.Number, meta.Title),
			Body:   body,
			Labels: labels,
		})
		report.Agents = append(report.Agents, result)
	}

	overview := o.Overview
	overview.LineBreak = br
	report.Body = Rewrite(doc, overview.Build(specRef, report.CreatedAgents()), br)

	if err := o.Service.UpdateIssueBody(ctx, o.Owner, o.Repo, meta.Number, report.Body); err != nil {
		logging.Error("failed to update meta issue",
			"issue_number", meta.Number,
			"error", err)
	} else {
		report.Updated = true
	}

	logging.Info("fan-out complete",
		"issue_number", meta.Number,
		"requested", len(repos),
		"created", len(report.CreatedAgents()),
		"spec_created", specRef != nil,
		"meta_updated", report.Updated)

	return report, nil
}

func (o *Orchestrator) subIssueBody(meta models.MetaIssue, specRef *models.IssueRef, br string) string {
	var sb strings.Builder
	if specRef != nil {
		sb.WriteString("See meta issue and spec for the description and details:" + br)
	} else {
		sb.WriteString("See meta issue for the description and details:" + br)
	}
	sb.WriteString("- [ ] Meta issue: " + meta.HTMLURL + br)
	if specRef != nil {
		sb.WriteString("- [ ] Spec issue: " + specRef.URL(o.Overview.ServerURL) + br)
	}
	return sb.String()
}

// ExcludeLabels returns labels without the members of exclude, keeping order.
// Membership is case-sensitive.
func ExcludeLabels(labels []string, exclude []string) []string {
	excluded := make(map[string]struct{}, len(exclude))
	for _, label := range exclude {
		excluded[label] = struct{}{}
	}

	result := make([]string, 0, len(labels))
	for _, label := range labels {
		if _, skip := excluded[label]; skip {
			continue
		}
		result = append(result, label)
	}
	return result
}
