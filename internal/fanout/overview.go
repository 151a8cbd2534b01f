package fanout

import (
	"strings"

	"github.com/danielolaszy/metaissue/internal/checklist"
	"github.com/danielolaszy/metaissue/pkg/models"
)

// IssuePathPlaceholder is replaced with owner/repo/issues/number in badge templates.
const IssuePathPlaceholder = "[ISSUE_PATH]"

// Overview renders the generated section appended to the meta issue.
type Overview struct {
	ServerURL     string
	BadgeTemplate string
	LineBreak     string
}

// Build renders the spec section (when spec is set) followed by the agent
// section (when agents is non-empty). Empty sections are left out.
func (o Overview) Build(spec *models.IssueRef, agents []models.IssueRef) string {
	br := o.lineBreak()

	var sb strings.Builder
	if spec != nil {
		sb.WriteString("## Spec Issue" + br)
		sb.WriteString(o.line(*spec))
		sb.WriteString(br)
	}
	if len(agents) > 0 {
		sb.WriteString("## Agent Issues" + br)
		for _, ref := range agents {
			sb.WriteString(o.line(ref))
		}
	}
	return sb.String()
}

func (o Overview) line(ref models.IssueRef) string {
	badge := strings.Replace(o.BadgeTemplate, IssuePathPlaceholder, ref.Path(), 1)
	return "- [ ] " + ref.URL(o.ServerURL) + " " + badge + o.lineBreak()
}

func (o Overview) lineBreak() string {
	if o.LineBreak == "" {
		return "\r\n"
	}
	return o.LineBreak
}

// Rewrite composes the new meta issue body. The checklist block is dropped.
func Rewrite(doc *checklist.Document, overview string, br string) string {
	return doc.Preamble + br + doc.Trailer + br + br + overview
}
