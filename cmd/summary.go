package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/triage/internal/store"
	"github.com/danielolaszy/triage/pkg/models"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the summary of a results document",
	Long: `Print the aggregate counts from a results document, plus the list of issues
classified as user errors. Read-only; the document is never modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("results")

		s, err := store.Load(path)
		if err != nil {
			return err
		}
		if s.Len() == 0 {
			return fmt.Errorf("no results found in %s", path)
		}

		printSummary(cmd.OutOrStdout(), s)
		return nil
	},
}

func printSummary(w io.Writer, s *store.Store) {
	summary := s.Summary()

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	bold.Fprintln(w, "SUMMARY")
	fmt.Fprintf(w, "Total issues:    %d\n", summary.Total)
	green.Fprintf(w, "User errors:     %d\n", summary.UserErrors)
	red.Fprintf(w, "Non-user errors: %d\n", summary.NonUserErrors)
	yellow.Fprintf(w, "Uncertain:       %d\n", summary.Uncertain)

	userErrors := make([]models.ClassificationResult, 0, summary.UserErrors)
	for _, result := range s.Results() {
		if result.IsUserError == models.VerdictUserError {
			userErrors = append(userErrors, result)
		}
	}
	if len(userErrors) == 0 {
		return
	}

	fmt.Fprintln(w)
	bold.Fprintln(w, "USER ERRORS")
	for _, result := range userErrors {
		fmt.Fprintf(w, "\n#%d: %s\n", result.IssueNumber, truncateTitle(result.Title, 70))
		fmt.Fprintf(w, "  URL: %s\n", result.URL)
		fmt.Fprintf(w, "  Confidence: %s\n", result.Confidence)
		fmt.Fprintf(w, "  Reason: %s\n", result.Reasoning)
	}
}

func truncateTitle(title string, max int) string {
	if len(title) <= max {
		return title
	}
	return title[:max] + "..."
}

func init() {
	summaryCmd.Flags().String("results", "results.json", "results document to summarize")
}
