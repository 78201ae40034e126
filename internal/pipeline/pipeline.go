// Package pipeline runs the incremental categorization flow: schedule each
// candidate issue, assemble evidence, invoke the oracle, and merge results
// into the store.
package pipeline

import (
	"context"
	"fmt"

	"github.com/danielolaszy/triage/internal/evidence"
	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/internal/oracle"
	"github.com/danielolaszy/triage/internal/scheduler"
	"github.com/danielolaszy/triage/internal/store"
	"github.com/danielolaszy/triage/pkg/models"
)

// CommentSource supplies the comment evidence for one issue. The bool return
// reports whether comments were actually fetched; false means the bundle is
// assembled with comment evidence marked unavailable.
type CommentSource func(ctx context.Context, issue models.Issue) ([]models.Comment, bool, error)

// Options configure a single run.
type Options struct {
	// Limit is the maximum number of issues to consider (0 = no limit).
	Limit int

	// Comments supplies comment evidence. Nil means comment evidence is
	// unavailable for the whole run.
	Comments CommentSource

	// OutputPath, when set, is persisted after every successful
	// classification so an interrupted run can resume from the cache.
	OutputPath string
}

// RunStats summarizes what happened to the considered issues.
type RunStats struct {
	Considered int
	Processed  int
	Cached     int
	Disabled   int
	NonIssues  int
	Malformed  int
}

// Pipeline is the categorization run driver. Processing is sequential; each
// classification is independent and the store is the only shared state.
type Pipeline struct {
	invoker *oracle.Invoker
	store   *store.Store
}

// New builds a pipeline classifying with the given oracle and merging into
// the given store (which may be pre-seeded with prior results).
func New(o oracle.Oracle, s *store.Store) *Pipeline {
	return &Pipeline{
		invoker: oracle.NewInvoker(o),
		store:   s,
	}
}

// Store returns the result store backing the pipeline.
func (p *Pipeline) Store() *store.Store {
	return p.store
}

// Run classifies the given issues. Per-issue problems (malformed records,
// oracle failures) are contained to that issue; only structural store
// failures and cancellation abort the run. The store always reflects
// everything classified so far when Run returns.
func (p *Pipeline) Run(ctx context.Context, issues []models.Issue, opts Options) (RunStats, error) {
	if opts.Limit > 0 && len(issues) > opts.Limit {
		issues = issues[:opts.Limit]
	}

	stats := RunStats{Considered: len(issues)}
	sched := scheduler.New(p.store.Contains)

	logging.Info("processing issues", "count", len(issues), "cached_results", p.store.Len())

	for i, issue := range issues {
		// A run may be interrupted between issues; results so far are
		// already persisted and resumable via skip-cached.
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("run interrupted: %w", err)
		}

		if err := evidence.ValidateRecord(issue); err != nil {
			logging.Warn("rejecting malformed issue record", "error", err)
			stats.Malformed++
			continue
		}

		decision := sched.Decide(issue)
		switch decision {
		case scheduler.SkipNonIssue:
			logging.Debug("skipping pull request", "issue_number", issue.Number)
			stats.NonIssues++
			continue
		case scheduler.SkipDisabled:
			logging.Info("skipping disabled-test tracker", "issue_number", issue.Number)
			stats.Disabled++
			continue
		case scheduler.SkipCached:
			logging.Info("already classified, skipping", "issue_number", issue.Number)
			stats.Cached++
			continue
		}

		logging.Info("analyzing issue",
			"progress", fmt.Sprintf("%d/%d", i+1, len(issues)),
			"issue_number", issue.Number)

		result := p.invoker.Invoke(ctx, p.assemble(ctx, issue, opts.Comments))
		p.store.Merge(result)
		stats.Processed++

		logging.Info("classified issue",
			"issue_number", issue.Number,
			"verdict", result.IsUserError.String(),
			"confidence", result.Confidence)

		if opts.OutputPath != "" {
			if err := p.store.Save(opts.OutputPath); err != nil {
				// Not being able to write the store at all is
				// structural, unlike per-issue failures.
				return stats, err
			}
		}
	}

	logging.Info("run complete",
		"considered", stats.Considered,
		"new", stats.Processed,
		"cached", stats.Cached,
		"disabled", stats.Disabled,
		"pull_requests", stats.NonIssues,
		"malformed", stats.Malformed,
		"total_results", p.store.Len())

	return stats, nil
}

// assemble builds the evidence bundle for a process-eligible issue. Comment
// fetch failures degrade to "comments unavailable" rather than failing the
// issue.
func (p *Pipeline) assemble(ctx context.Context, issue models.Issue, source CommentSource) models.EvidenceBundle {
	if source == nil {
		return evidence.AssembleWithoutComments(issue)
	}

	comments, fetched, err := source(ctx, issue)
	if err != nil {
		logging.Warn("could not fetch comments", "issue_number", issue.Number, "error", err)
		return evidence.AssembleWithoutComments(issue)
	}
	if !fetched {
		return evidence.AssembleWithoutComments(issue)
	}
	return evidence.Assemble(issue, comments)
}
