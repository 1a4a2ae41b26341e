package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/teemow/gdrive/internal/drive"
)

func newInfoCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info FILE_ID",
		Short: "Show metadata for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstrumented(cmd, "info", func(ctx context.Context) error {
				client, err := drive.NewClientForAccount(ctx, accountFlag, commandMetrics())
				if err != nil {
					return err
				}

				info, err := client.GetFile(ctx, args[0])
				if err != nil {
					if drive.IsNotFound(err) {
						return fmt.Errorf("file %s not found", args[0])
					}
					return err
				}

				if asJSON {
					data, err := json.MarshalIndent(info, "", "  ")
					if err != nil {
						return fmt.Errorf("failed to render file info: %w", err)
					}
					fmt.Println(string(data))
					return nil
				}

				printFileInfo(info)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false,
		"Emit the metadata as JSON")

	return cmd
}

func printFileInfo(info *drive.FileInfo) {
	fmt.Printf("ID:        %s\n", info.ID)
	fmt.Printf("Name:      %s\n", info.Name)
	fmt.Printf("Type:      %s\n", info.MimeType)
	if info.Size > 0 {
		fmt.Printf("Size:      %s (%d bytes)\n", humanize.IBytes(uint64(info.Size)), info.Size)
	}
	fmt.Printf("Created:   %s\n", info.CreatedTime.Format(time.RFC3339))
	fmt.Printf("Modified:  %s\n", info.ModifiedTime.Format(time.RFC3339))
	if len(info.Parents) > 0 {
		fmt.Printf("Parents:   %s\n", strings.Join(info.Parents, ", "))
	}
	for _, owner := range info.Owners {
		fmt.Printf("Owner:     %s <%s>\n", owner.DisplayName, owner.EmailAddress)
	}
	if info.WebViewLink != "" {
		fmt.Printf("View:      %s\n", info.WebViewLink)
	}
	if info.WebContentLink != "" {
		fmt.Printf("Download:  %s\n", info.WebContentLink)
	}
	fmt.Printf("Shared:    %t\n", info.Shared)
	fmt.Printf("Trashed:   %t\n", info.Trashed)
}
