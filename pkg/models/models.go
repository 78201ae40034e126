// Package models defines data structures shared across the application.
package models

import (
	"fmt"
)

// Issue represents a tracker issue with the fields the categorization
// pipeline cares about. Issues are immutable once fetched.
type Issue struct {
	// Number is the issue number in the tracker (e.g., 42)
	Number int

	// Title is the issue's title or summary
	Title string

	// Body is the full body text of the issue (may be empty)
	Body string

	// State is the current state of the issue ("open" or "closed")
	State string

	// Labels is a slice of label names attached to the issue
	Labels []string

	// URL is the web URL of the issue
	URL string

	// PullRequest indicates the record is actually a pull request.
	// The issues API of some trackers returns both; the scheduler
	// excludes pull requests from categorization entirely.
	PullRequest bool
}

// Comment is a single comment on an issue. An issue owns its comments as an
// ordered, append-only sequence.
type Comment struct {
	// Author is the login of the comment author (may be empty for file
	// exports that don't carry it)
	Author string

	// Body is the comment text
	Body string
}

// EvidenceBundle is the normalized input to classification: one issue plus
// its ordered comments. It is derived and never persisted.
type EvidenceBundle struct {
	Issue Issue

	// Comments is the ordered comment sequence for the issue
	Comments []Comment

	// CommentsFetched distinguishes "comments were fetched and there are
	// none" (true, empty slice) from "comments were never fetched" (false).
	// Confidence calibration downstream depends on the distinction.
	CommentsFetched bool
}

// Verdict is the tri-state outcome of a classification: user error, not a
// user error, or unknown. It is a tagged enum rather than a bool with a
// sentinel so "confirmed not-user-error" can never be conflated with
// "unclassified".
type Verdict int

const (
	// VerdictUnknown means the category could not be determined
	VerdictUnknown Verdict = iota

	// VerdictUserError means no code change is needed; the reporter needs
	// to change their own code or usage
	VerdictUserError

	// VerdictNotUserError means the issue requires a code change
	VerdictNotUserError
)

// String returns a human-readable form of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictUserError:
		return "user error"
	case VerdictNotUserError:
		return "not user error"
	default:
		return "uncertain"
	}
}

// MarshalJSON serializes the verdict as true, false, or null so the persisted
// document stays interchangeable with exports produced by other tooling.
func (v Verdict) MarshalJSON() ([]byte, error) {
	switch v {
	case VerdictUserError:
		return []byte("true"), nil
	case VerdictNotUserError:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON parses true, false, or null into the corresponding verdict.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true":
		*v = VerdictUserError
	case "false":
		*v = VerdictNotUserError
	case "null":
		*v = VerdictUnknown
	default:
		return fmt.Errorf("invalid is_user_error value: %s", string(data))
	}
	return nil
}

// Confidence is the oracle's self-reported confidence in a verdict.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence normalizes a confidence string from the oracle. Anything
// outside the contract collapses to low rather than failing the result.
func ParseConfidence(s string) Confidence {
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return Confidence(s)
	default:
		return ConfidenceLow
	}
}

// ClassificationResult is the categorization outcome for a single issue,
// keyed by issue number. Issue metadata is carried through for display.
type ClassificationResult struct {
	IssueNumber int        `json:"issue_number"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	State       string     `json:"state"`
	Labels      []string   `json:"labels"`
	IsUserError Verdict    `json:"is_user_error"`
	Confidence  Confidence `json:"confidence"`
	Reasoning   string     `json:"reasoning"`
}

// Summary holds the aggregate counts over a result set. The three category
// counts always partition Total.
type Summary struct {
	Total         int `json:"total"`
	UserErrors    int `json:"user_errors"`
	NonUserErrors int `json:"non_user_errors"`
	Uncertain     int `json:"uncertain"`
}
