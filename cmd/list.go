package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrive/internal/drive"
)

func newListCmd() *cobra.Command {
	var (
		query          string
		parent         string
		maxResults     int
		orderBy        string
		pageToken      string
		includeTrashed bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List files in Google Drive",
		Long: `List files, optionally filtered with the Drive query language.

See https://developers.google.com/drive/api/guides/search-files for the
query syntax. --parent is shorthand for adding a parent folder condition.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstrumented(cmd, "list", func(ctx context.Context) error {
				client, err := drive.NewClientForAccount(ctx, accountFlag, commandMetrics())
				if err != nil {
					return err
				}

				files, nextPageToken, err := client.ListFiles(ctx, &drive.ListOptions{
					Query:          combineQueryWithParent(query, parent),
					MaxResults:     maxResults,
					OrderBy:        orderBy,
					PageToken:      pageToken,
					IncludeTrashed: includeTrashed,
				})
				if err != nil {
					return err
				}

				printFileList(files, nextPageToken)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&query, "query", "",
		"Filter in the Drive query language")
	cmd.Flags().StringVar(&parent, "parent", "",
		"Only list files inside this folder ID")
	cmd.Flags().IntVar(&maxResults, "max", 100,
		"Maximum number of files to return")
	cmd.Flags().StringVar(&orderBy, "order-by", "",
		"Sort order of the result set (e.g. 'folder,modifiedTime desc,name')")
	cmd.Flags().StringVar(&pageToken, "page-token", "",
		"Token for the next page of results")
	cmd.Flags().BoolVar(&includeTrashed, "trashed", false,
		"Include trashed files")

	return cmd
}

// combineQueryWithParent adds a parent folder condition to a user query.
func combineQueryWithParent(query, parent string) string {
	if parent == "" {
		return query
	}
	parentClause := fmt.Sprintf("'%s' in parents", escapeQueryTerm(parent))
	if query == "" {
		return parentClause
	}
	return fmt.Sprintf("(%s) and %s", query, parentClause)
}

// printFileList prints one "NAME (ID)" line per file plus the token for the
// next page when the listing was truncated.
func printFileList(files []*drive.FileInfo, nextPageToken string) {
	for _, f := range files {
		fmt.Printf("%s (%s)\n", f.Name, f.ID)
	}
	if nextPageToken != "" {
		fmt.Printf("Next page token: %s\n", nextPageToken)
	}
}
