package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrive/internal/drive"
)

func newCreateCmd() *cobra.Command {
	var parents []string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a folder in Google Drive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstrumented(cmd, "create", func(ctx context.Context) error {
				client, err := drive.NewClientForAccount(ctx, accountFlag, commandMetrics())
				if err != nil {
					return err
				}

				folder, err := client.CreateFolder(ctx, args[0], parents)
				if err != nil {
					return err
				}

				fmt.Printf("Created folder %q with ID %s\n", folder.Name, folder.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&parents, "parent", nil,
		"Parent folder ID (repeatable)")

	return cmd
}
