// Package github provides functionality for interacting with the GitHub API
// and with offline GitHub API exports.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/danielolaszy/triage/internal/config"
	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/pkg/models"
)

// Client encapsulates the GitHub API client.
type Client struct {
	client *github.Client

	// limiter throttles API calls. Comment fetching is one request per
	// issue, which adds up fast against the secondary rate limits.
	limiter *rate.Limiter
}

// NewClient creates a new GitHub API client using configuration from environment variables.
// It initializes the client with the appropriate base URL, authenticates with the GitHub API,
// and tests the connection. It returns the configured client or an error if initialization fails.
func NewClient() (*Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.ValidateGitHubConfig(cfg); err != nil {
		return nil, err
	}

	// Get domain from config, default to github.com
	domain := cfg.GitHub.Domain
	if domain == "" {
		domain = "github.com"
	}

	// Construct API URL based on domain
	var apiURL string
	if domain == "github.com" {
		apiURL = "https://api.github.com/"
	} else {
		apiURL = fmt.Sprintf("https://%s/api/v3/", domain)
	}

	logging.Info("github configuration",
		"domain", domain,
		"api_url", apiURL,
		"token", logging.MaskSensitive(cfg.GitHub.Token))

	// Create the oauth2 client
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.GitHub.Token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	// Create GitHub client with custom base URL
	client := github.NewClient(tc)

	// If not using default GitHub.com, set custom API endpoint
	if domain != "github.com" {
		parsedURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}

		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}

	// Test the token
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		logging.Error("failed to test github token", "error", err)
		return nil, fmt.Errorf("error testing github token: %w", err)
	}

	logging.Info("github authentication successful", "username", user.GetLogin())

	// Roughly one request per second keeps well inside the authenticated
	// rate limit even with per-issue comment fetches.
	return &Client{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}, nil
}

// splitRepository parses "owner/repo" into its parts.
func splitRepository(repository string) (string, string, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repository)
	}
	return parts[0], parts[1], nil
}

// GetIssues retrieves up to limit recent issues (open and closed) from a
// GitHub repository. Pull requests are kept in the result with their marker
// set; the scheduler decides what to do with them, not the fetcher.
func (c *Client) GetIssues(ctx context.Context, repository string, limit int) ([]models.Issue, error) {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}

	perPage := 100
	if limit > 0 && limit < perPage {
		perPage = limit
	}
	opts := &github.IssueListByRepoOptions{
		State: "all",
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	var result []models.Issue
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter interrupted: %w", err)
		}

		issues, resp, err := c.client.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			logging.Error("failed to fetch github issues", "repository", repository, "error", err)
			return nil, fmt.Errorf("failed to fetch GitHub issues: %w", err)
		}

		for _, issue := range issues {
			result = append(result, convertIssue(issue))
			if limit > 0 && len(result) >= limit {
				return result[:limit], nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logging.Info("fetched github issues", "repository", repository, "count", len(result))
	return result, nil
}

// GetIssueComments retrieves the full ordered comment sequence for one issue.
func (c *Client) GetIssueComments(ctx context.Context, repository string, issueNumber int) ([]models.Comment, error) {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}

	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var result []models.Comment
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter interrupted: %w", err)
		}

		comments, resp, err := c.client.Issues.ListComments(ctx, owner, repo, issueNumber, opts)
		if err != nil {
			logging.Error("failed to fetch issue comments", "repository", repository, "issue_number", issueNumber, "error", err)
			return nil, fmt.Errorf("failed to fetch comments for issue #%d: %w", issueNumber, err)
		}

		for _, comment := range comments {
			result = append(result, models.Comment{
				Author: comment.GetUser().GetLogin(),
				Body:   comment.GetBody(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return result, nil
}

// convertIssue maps a go-github issue to the internal model.
func convertIssue(issue *github.Issue) models.Issue {
	labelNames := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labelNames = append(labelNames, label.GetName())
	}

	return models.Issue{
		Number:      issue.GetNumber(),
		Title:       issue.GetTitle(),
		Body:        issue.GetBody(),
		State:       issue.GetState(),
		Labels:      labelNames,
		URL:         issue.GetHTMLURL(),
		PullRequest: issue.PullRequestLinks != nil,
	}
}
