package github

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/pkg/models"
)

// rawIssue mirrors the GitHub REST issue shape, with pull_request kept raw
// because its mere presence is the pull-request marker.
type rawIssue struct {
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	State       string          `json:"state"`
	HTMLURL     string          `json:"html_url"`
	Labels      []rawLabel      `json:"labels"`
	PullRequest json.RawMessage `json:"pull_request"`
}

type rawLabel struct {
	Name string `json:"name"`
}

type rawComment struct {
	Body string `json:"body"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
}

// LoadIssuesFile reads an issues JSON export (the array returned by the
// GitHub issues API). Pull requests stay in the result with their marker set.
func LoadIssuesFile(path string) ([]models.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read issues file %s: %w", path, err)
	}

	var raw []rawIssue
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse issues file %s: %w", path, err)
	}

	issues := make([]models.Issue, 0, len(raw))
	for _, r := range raw {
		labelNames := make([]string, 0, len(r.Labels))
		for _, label := range r.Labels {
			labelNames = append(labelNames, label.Name)
		}

		issues = append(issues, models.Issue{
			Number:      r.Number,
			Title:       r.Title,
			Body:        r.Body,
			State:       r.State,
			Labels:      labelNames,
			URL:         r.HTMLURL,
			PullRequest: len(r.PullRequest) > 0,
		})
	}

	logging.Info("loaded issues from file", "path", path, "count", len(issues))
	return issues, nil
}

// LoadCommentsFile reads the comments export for one issue from a directory
// of files named <number>.json. The second return value reports whether the
// file existed: a missing file means "comments not fetched", which the
// assembler keeps distinct from an issue with zero comments.
func LoadCommentsFile(dir string, issueNumber int) ([]models.Comment, bool, error) {
	path := filepath.Join(dir, fmt.Sprintf("%d.json", issueNumber))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read comments file %s: %w", path, err)
	}

	var raw []rawComment
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("failed to parse comments file %s: %w", path, err)
	}

	comments := make([]models.Comment, 0, len(raw))
	for _, r := range raw {
		comments = append(comments, models.Comment{
			Author: r.User.Login,
			Body:   r.Body,
		})
	}
	return comments, true, nil
}
