package oracle

import (
	"fmt"
	"strings"

	"github.com/danielolaszy/triage/pkg/models"
)

// maxEvidenceChars caps the body and comment sections of the prompt so a
// pathological issue cannot blow the context window.
const maxEvidenceChars = 4000

// systemPrompt defines the category boundary and the mandatory response
// contract. It is fixed per run, which also makes it cacheable server-side.
const systemPrompt = `You analyze software issue-tracker reports and determine whether each is a "user error".

A USER ERROR is an issue where:
- No change to the project's code is needed to resolve it
- The reporter needs to change their own code or their usage of the project's APIs
- Examples: misunderstanding API behavior, incorrect usage, environment/setup issues on the reporter's side, questions about how to use the project

NOT a user error:
- Bugs in the project that require code fixes
- Missing features that should be added
- Documentation bugs in the project
- Performance issues caused by project internals

Respond with a JSON object ONLY, no other text:
{"is_user_error": true/false, "confidence": "high"/"medium"/"low", "reasoning": "Brief explanation"}

If you cannot determine the category, set is_user_error to null.`

// BuildPrompt encodes an evidence bundle into the user prompt. The encoding
// is fixed: title, state, labels, truncated body, then the ordered comments.
// An issue whose comments were never fetched is flagged as such, which is
// different from an issue that simply has no comments.
func BuildPrompt(bundle models.EvidenceBundle) string {
	issue := bundle.Issue

	labels := "none"
	if len(issue.Labels) > 0 {
		labels = strings.Join(issue.Labels, ", ")
	}

	body := "(empty)"
	if issue.Body != "" {
		body = truncate(issue.Body, maxEvidenceChars)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ISSUE #%d: %s\n", issue.Number, issue.Title)
	fmt.Fprintf(&b, "State: %s\n", issue.State)
	fmt.Fprintf(&b, "Labels: %s\n", labels)
	b.WriteString("\nISSUE BODY:\n")
	b.WriteString(body)
	b.WriteString("\n\nCOMMENTS:\n")
	b.WriteString(commentsSection(bundle))
	return b.String()
}

func commentsSection(bundle models.EvidenceBundle) string {
	if !bundle.CommentsFetched {
		return "(comments not fetched - comment evidence is unavailable, calibrate confidence accordingly)"
	}
	if len(bundle.Comments) == 0 {
		return "(no comments)"
	}

	bodies := make([]string, 0, len(bundle.Comments))
	for _, c := range bundle.Comments {
		bodies = append(bodies, c.Body)
	}
	return truncate(strings.Join(bodies, "\n\n---\n\n"), maxEvidenceChars)
}
