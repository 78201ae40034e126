package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/triage/internal/config"
	"github.com/danielolaszy/triage/internal/github"
	"github.com/danielolaszy/triage/internal/jira"
	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/internal/oracle"
	"github.com/danielolaszy/triage/internal/pipeline"
	"github.com/danielolaszy/triage/internal/store"
	"github.com/danielolaszy/triage/pkg/models"
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize",
	Short: "Classify issues as user errors or code changes",
	Long: `Classify issues with the reasoning model and merge the outcomes into the
results document.

Issues come either from a JSON export (--input, with optional --comments-dir
holding per-issue comment files named <number>.json) or from the tracker API
(--fetch-online). When --output points at an existing results document, the
prior classifications seed the cache and only new issues are processed.

Examples:
  # Fetch issues manually first:
  curl -s "https://api.github.com/repos/pytorch/pytorch/issues?state=all&per_page=50" > issues.json

  # Run categorization against the export:
  triage categorize --input issues.json --output results.json

  # Or fetch everything online, including comment evidence:
  triage categorize -r pytorch/pytorch --fetch-online --fetch-comments --output results.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		commentsDir, _ := cmd.Flags().GetString("comments-dir")
		limit, _ := cmd.Flags().GetInt("limit")
		output, _ := cmd.Flags().GetString("output")
		fetchOnline, _ := cmd.Flags().GetBool("fetch-online")
		fetchComments, _ := cmd.Flags().GetBool("fetch-comments")
		source, _ := cmd.Flags().GetString("source")
		repository, _ := cmd.Flags().GetString("repository")

		if input == "" && !fetchOnline {
			return fmt.Errorf("either --input or --fetch-online is required")
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.ValidateOracleConfig(cfg); err != nil {
			return err
		}

		// Seed the cache from a prior run. A corrupt document is fatal:
		// starting empty would silently discard history.
		resultStore := store.New()
		if output != "" {
			resultStore, err = store.Load(output)
			if err != nil {
				return err
			}
		}

		ctx := cmd.Context()

		issues, comments, err := gatherIssues(ctx, source, repository, input, commentsDir, limit, fetchOnline, fetchComments)
		if err != nil {
			return err
		}

		orc, err := oracle.NewAnthropicOracle(cfg.Oracle)
		if err != nil {
			return err
		}

		p := pipeline.New(orc, resultStore)
		if _, err := p.Run(ctx, issues, pipeline.Options{
			Limit:      limit,
			Comments:   comments,
			OutputPath: output,
		}); err != nil {
			return err
		}

		if output == "" {
			return resultStore.WriteTo(os.Stdout)
		}
		// The store is already persisted incrementally; one final save
		// covers runs where every issue was skipped.
		if err := resultStore.Save(output); err != nil {
			return err
		}
		logging.Info("results written", "path", output, "total", resultStore.Len())
		return nil
	},
}

// gatherIssues resolves the issue source and the comment evidence source for
// the run.
func gatherIssues(ctx context.Context, source, repository, input, commentsDir string, limit int, fetchOnline, fetchComments bool) ([]models.Issue, pipeline.CommentSource, error) {
	switch source {
	case "jira":
		if repository == "" {
			return nil, nil, fmt.Errorf("--repository must name a JIRA project key when --source=jira")
		}
		client, err := jira.NewClient()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize JIRA client: %w", err)
		}
		issues, err := client.GetIssues(repository, limit)
		if err != nil {
			return nil, nil, err
		}
		var comments pipeline.CommentSource
		if fetchComments {
			comments = func(_ context.Context, issue models.Issue) ([]models.Comment, bool, error) {
				fetched, err := client.GetIssueComments(jira.IssueKey(repository, issue.Number))
				if err != nil {
					return nil, false, err
				}
				return fetched, true, nil
			}
		}
		return issues, comments, nil

	case "github", "":
		var issues []models.Issue
		var client *github.Client
		var err error

		if input != "" {
			issues, err = github.LoadIssuesFile(input)
			if err != nil {
				return nil, nil, err
			}
		} else {
			client, err = github.NewClient()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to initialize GitHub client: %w", err)
			}
			if repository == "" {
				return nil, nil, fmt.Errorf("--repository is required with --fetch-online")
			}
			issues, err = client.GetIssues(ctx, repository, limit)
			if err != nil {
				return nil, nil, err
			}
		}

		var comments pipeline.CommentSource
		switch {
		case commentsDir != "":
			comments = func(_ context.Context, issue models.Issue) ([]models.Comment, bool, error) {
				return github.LoadCommentsFile(commentsDir, issue.Number)
			}
		case fetchOnline && fetchComments:
			if client == nil {
				client, err = github.NewClient()
				if err != nil {
					return nil, nil, fmt.Errorf("failed to initialize GitHub client: %w", err)
				}
			}
			ghClient := client
			comments = func(ctx context.Context, issue models.Issue) ([]models.Comment, bool, error) {
				fetched, err := ghClient.GetIssueComments(ctx, repository, issue.Number)
				if err != nil {
					return nil, false, err
				}
				return fetched, true, nil
			}
		}
		return issues, comments, nil

	default:
		return nil, nil, fmt.Errorf("unknown source: %s (expected 'github' or 'jira')", source)
	}
}

func init() {
	categorizeCmd.Flags().String("input", "", "JSON file with issues (a GitHub issues API export)")
	categorizeCmd.Flags().String("comments-dir", "", "directory with comment JSON files named <issue_number>.json")
	categorizeCmd.Flags().Int("limit", 20, "maximum number of issues to consider")
	categorizeCmd.Flags().String("output", "", "results document path (default: stdout, no caching)")
	categorizeCmd.Flags().Bool("fetch-online", false, "fetch issues from the tracker API instead of a file")
	categorizeCmd.Flags().Bool("fetch-comments", false, "fetch comment evidence from the tracker API")
	categorizeCmd.Flags().String("source", "github", "issue source: 'github' or 'jira'")
}
