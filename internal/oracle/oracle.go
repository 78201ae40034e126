// Package oracle invokes the external reasoning service that decides whether
// an issue is a user error, and enforces its structured response contract.
package oracle

import (
	"context"

	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/pkg/models"
)

// Classification is the three-field verdict the oracle must return.
type Classification struct {
	IsUserError models.Verdict
	Confidence  models.Confidence
	Reasoning   string
}

// Oracle is the external classification service, modeled as a capability so
// tests can inject a deterministic stub. Each call is independent; evidence
// for one issue never influences the classification of another.
type Oracle interface {
	Classify(ctx context.Context, bundle models.EvidenceBundle) (Classification, error)
}

// Invoker submits evidence bundles to an oracle and contains its failures: a
// transport error, timeout, or non-conforming response is downgraded to an
// uncertain low-confidence result so a single hiccup cannot abort a batch.
type Invoker struct {
	oracle Oracle
}

// NewInvoker creates an invoker around the given oracle.
func NewInvoker(o Oracle) *Invoker {
	return &Invoker{oracle: o}
}

// Invoke classifies one evidence bundle and always yields a result.
func (i *Invoker) Invoke(ctx context.Context, bundle models.EvidenceBundle) models.ClassificationResult {
	classification, err := i.oracle.Classify(ctx, bundle)
	if err != nil {
		logging.Warn("oracle failure, recording uncertain result",
			"issue_number", bundle.Issue.Number,
			"error", err)
		classification = Classification{
			IsUserError: models.VerdictUnknown,
			Confidence:  models.ConfidenceLow,
			Reasoning:   "Classification failed: " + truncate(err.Error(), 200),
		}
	}

	return models.ClassificationResult{
		IssueNumber: bundle.Issue.Number,
		Title:       bundle.Issue.Title,
		URL:         bundle.Issue.URL,
		State:       bundle.Issue.State,
		Labels:      bundle.Issue.Labels,
		IsUserError: classification.IsUserError,
		Confidence:  classification.Confidence,
		Reasoning:   classification.Reasoning,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
