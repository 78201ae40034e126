// Package evidence builds normalized per-issue evidence bundles that serve as
// input to classification.
package evidence

import (
	"fmt"

	"github.com/danielolaszy/triage/pkg/models"
)

// ValidateRecord checks that a raw issue record carries the fields the
// pipeline requires. Malformed records are rejected rather than coerced.
func ValidateRecord(issue models.Issue) error {
	if issue.Number <= 0 {
		return fmt.Errorf("issue record missing identifier (title: %q)", issue.Title)
	}
	if issue.Title == "" {
		return fmt.Errorf("issue record #%d missing title", issue.Number)
	}
	return nil
}

// Assemble builds an evidence bundle from an issue and its fetched comments.
// An empty slice is a valid input meaning the issue has no comments.
func Assemble(issue models.Issue, comments []models.Comment) models.EvidenceBundle {
	return models.EvidenceBundle{
		Issue:           issue,
		Comments:        comments,
		CommentsFetched: true,
	}
}

// AssembleWithoutComments builds an evidence bundle for an issue whose
// comments were never fetched. This is not the same as an issue with zero
// comments; the oracle is told that comment evidence is unavailable.
func AssembleWithoutComments(issue models.Issue) models.EvidenceBundle {
	return models.EvidenceBundle{
		Issue:           issue,
		CommentsFetched: false,
	}
}
