package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Triage categorizes issue-tracker reports as user errors or code changes",
	Long: `Triage reads issues from a tracker (GitHub or JIRA, online or from a JSON
export), asks a reasoning model whether each one is a user error or requires a
code change, and maintains an incremental results document. Already-classified
issues are never re-processed, so the tool can be re-run safely as new issues
arrive.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Add persistent flags that will be available to all commands
	rootCmd.PersistentFlags().StringP("repository", "r", "", "GitHub repository name (e.g., 'owner/repo') or JIRA project key")

	rootCmd.AddCommand(categorizeCmd)
	rootCmd.AddCommand(summaryCmd)
}
