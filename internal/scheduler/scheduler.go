// Package scheduler decides, per candidate issue, whether it needs
// classification or can be skipped.
package scheduler

import (
	"strings"

	"github.com/danielolaszy/triage/pkg/models"
)

// DisabledTitlePrefix marks automated disabled-test tracking issues. These
// are structurally neither user errors nor code-change requests and are not
// worth an oracle call.
const DisabledTitlePrefix = "DISABLED"

// Decision is the scheduling outcome for one issue.
type Decision int

const (
	// Process means the issue is a classification candidate.
	Process Decision = iota

	// SkipNonIssue means the record is a pull request, excluded permanently.
	SkipNonIssue

	// SkipDisabled means the title carries the disabled-test sentinel,
	// excluded permanently.
	SkipDisabled

	// SkipCached means a prior classification exists and is carried
	// forward unchanged.
	SkipCached
)

// String returns the rule name for logging.
func (d Decision) String() string {
	switch d {
	case SkipNonIssue:
		return "skip-non-issue"
	case SkipDisabled:
		return "skip-disabled"
	case SkipCached:
		return "skip-cached"
	default:
		return "process"
	}
}

// rule pairs a predicate with the decision it produces.
type rule struct {
	decision Decision
	matches  func(models.Issue) bool
}

// Scheduler evaluates an ordered rule chain, first match wins. The order is
// load-bearing: a cached pull request must still come out as skip-non-issue,
// and a cached DISABLED issue as skip-disabled, so neither ever re-enters
// the store.
type Scheduler struct {
	rules []rule
}

// New builds a scheduler. isCached reports whether an issue number already
// has a classification in the result store.
func New(isCached func(issueNumber int) bool) *Scheduler {
	return &Scheduler{
		rules: []rule{
			{
				decision: SkipNonIssue,
				matches:  func(issue models.Issue) bool { return issue.PullRequest },
			},
			{
				decision: SkipDisabled,
				matches: func(issue models.Issue) bool {
					return strings.HasPrefix(issue.Title, DisabledTitlePrefix)
				},
			},
			{
				decision: SkipCached,
				matches:  func(issue models.Issue) bool { return isCached(issue.Number) },
			},
		},
	}
}

// Decide maps an issue to exactly one decision. The mapping is total: every
// issue that matches no skip rule is a process candidate.
func (s *Scheduler) Decide(issue models.Issue) Decision {
	for _, r := range s.rules {
		if r.matches(issue) {
			return r.decision
		}
	}
	return Process
}
