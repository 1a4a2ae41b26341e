package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrive/internal/drive"
)

func newQueryCmd() *cobra.Command {
	var (
		maxResults int
		orderBy    string
		pageToken  string
	)

	cmd := &cobra.Command{
		Use:   "query TERM",
		Short: "Find files whose name contains a term",
		Long: `Find files whose name contains TERM. Trashed files are excluded.

For full access to the Drive query language use 'gdrive list --query'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstrumented(cmd, "query", func(ctx context.Context) error {
				client, err := drive.NewClientForAccount(ctx, accountFlag, commandMetrics())
				if err != nil {
					return err
				}

				files, nextPageToken, err := client.ListFiles(ctx, &drive.ListOptions{
					Query:      fmt.Sprintf("name contains '%s'", escapeQueryTerm(args[0])),
					MaxResults: maxResults,
					OrderBy:    orderBy,
					PageToken:  pageToken,
				})
				if err != nil {
					return err
				}

				printFileList(files, nextPageToken)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&maxResults, "max", 100,
		"Maximum number of files to return")
	cmd.Flags().StringVar(&orderBy, "order-by", "createdTime",
		"Sort order of the result set")
	cmd.Flags().StringVar(&pageToken, "page-token", "",
		"Token for the next page of results")

	return cmd
}

// escapeQueryTerm escapes a literal for a single quoted string in the Drive
// query language.
func escapeQueryTerm(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	return strings.ReplaceAll(term, `'`, `\'`)
}
