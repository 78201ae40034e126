// Package jira provides an alternative issue source backed by the JIRA API.
// JIRA issues are mapped into the same semantic contract the pipeline uses
// for GitHub issues; JIRA has no pull requests, so the marker is never set.
package jira

import (
	"fmt"
	"strconv"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/triage/internal/config"
	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/pkg/models"
)

// Client handles interactions with the JIRA API.
type Client struct {
	client  *jira.Client
	baseURL string
}

// NewClient creates a new JIRA client from environment configuration.
func NewClient() (*Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return nil, err
	}

	tp := jira.BasicAuthTransport{
		Username: cfg.Jira.Username,
		Password: cfg.Jira.Token,
	}

	client, err := jira.NewClient(tp.Client(), cfg.Jira.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create JIRA client: %w", err)
	}

	logging.Info("jira configuration",
		"url", cfg.Jira.URL,
		"username", cfg.Jira.Username,
		"token", logging.MaskSensitive(cfg.Jira.Token))

	return &Client{
		client:  client,
		baseURL: strings.TrimSuffix(cfg.Jira.URL, "/"),
	}, nil
}

// GetIssues retrieves up to limit recent issues from a JIRA project, mapped
// into the pipeline's issue model.
func (c *Client) GetIssues(project string, limit int) ([]models.Issue, error) {
	jql := fmt.Sprintf("project = '%s' ORDER BY created DESC", project)
	opts := &jira.SearchOptions{MaxResults: limit}

	issues, _, err := c.client.Issue.Search(jql, opts)
	if err != nil {
		logging.Error("failed to search jira issues", "project", project, "error", err)
		return nil, fmt.Errorf("failed to search JIRA issues: %w", err)
	}

	result := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		converted, err := c.convertIssue(issue)
		if err != nil {
			logging.Warn("skipping jira issue with unusable key", "key", issue.Key, "error", err)
			continue
		}
		result = append(result, converted)
	}

	logging.Info("fetched jira issues", "project", project, "count", len(result))
	return result, nil
}

// GetIssueComments retrieves the ordered comment sequence for one issue key.
func (c *Client) GetIssueComments(issueKey string) ([]models.Comment, error) {
	issue, _, err := c.client.Issue.Get(issueKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JIRA issue %s: %w", issueKey, err)
	}

	if issue.Fields == nil || issue.Fields.Comments == nil {
		return []models.Comment{}, nil
	}

	comments := make([]models.Comment, 0, len(issue.Fields.Comments.Comments))
	for _, comment := range issue.Fields.Comments.Comments {
		comments = append(comments, models.Comment{
			Author: comment.Author.DisplayName,
			Body:   comment.Body,
		})
	}
	return comments, nil
}

// IssueKey rebuilds the JIRA key for an issue number within a project.
func IssueKey(project string, issueNumber int) string {
	return fmt.Sprintf("%s-%d", strings.ToUpper(project), issueNumber)
}

// convertIssue maps a JIRA issue into the pipeline model. The numeric part
// of the key becomes the issue number.
func (c *Client) convertIssue(issue jira.Issue) (models.Issue, error) {
	number, err := numberFromKey(issue.Key)
	if err != nil {
		return models.Issue{}, err
	}

	converted := models.Issue{
		Number: number,
		URL:    c.baseURL + "/browse/" + issue.Key,
		State:  "open",
	}

	if issue.Fields != nil {
		converted.Title = issue.Fields.Summary
		converted.Body = issue.Fields.Description
		converted.Labels = issue.Fields.Labels
		if issue.Fields.Status != nil && issue.Fields.Status.StatusCategory.Key == "done" {
			converted.State = "closed"
		}
	}
	return converted, nil
}

// numberFromKey extracts the numeric part of a key like "ABC-123".
func numberFromKey(key string) (int, error) {
	idx := strings.LastIndex(key, "-")
	if idx < 0 || idx == len(key)-1 {
		return 0, fmt.Errorf("invalid JIRA issue key: %s", key)
	}
	number, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("invalid JIRA issue key: %s", key)
	}
	return number, nil
}
