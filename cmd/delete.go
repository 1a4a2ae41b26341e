package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrive/internal/drive"
)

func newDeleteCmd() *cobra.Command {
	var trash bool

	cmd := &cobra.Command{
		Use:   "delete FILE_ID",
		Short: "Delete a file from Google Drive",
		Long: `Permanently delete a file by ID.

With --trash the file is moved to the trash instead, where it can still be
restored from the Drive web interface.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstrumented(cmd, "delete", func(ctx context.Context) error {
				client, err := drive.NewClientForAccount(ctx, accountFlag, commandMetrics())
				if err != nil {
					return err
				}

				fileID := args[0]
				if trash {
					file, err := client.TrashFile(ctx, fileID)
					if err != nil {
						return err
					}
					fmt.Printf("Moved %q (%s) to the trash\n", file.Name, file.ID)
					return nil
				}

				if err := client.DeleteFile(ctx, fileID); err != nil {
					return err
				}
				fmt.Printf("Deleted %s\n", fileID)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&trash, "trash", false,
		"Move the file to the trash instead of deleting it permanently")

	return cmd
}
