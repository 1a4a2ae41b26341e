package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrive/internal/drive"
)

func newMoveCmd() *cobra.Command {
	var (
		parent      string
		newName     string
		keepParents bool
	)

	cmd := &cobra.Command{
		Use:   "move FILE_ID",
		Short: "Move or rename a file",
		Long: `Move a file into another folder and/or rename it.

Moving replaces the file's current parents. With --keep-parents the new
parent is added instead, so the file appears in both folders.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstrumented(cmd, "move", func(ctx context.Context) error {
				if parent == "" && newName == "" {
					return fmt.Errorf("nothing to do: pass --parent and/or --name")
				}
				return runMove(ctx, args[0], parent, newName, keepParents)
			})
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "",
		"Destination folder ID")
	cmd.Flags().StringVar(&newName, "name", "",
		"New name for the file")
	cmd.Flags().BoolVar(&keepParents, "keep-parents", false,
		"Add the new parent instead of replacing the current ones")

	return cmd
}

func runMove(ctx context.Context, fileID, parent, newName string, keepParents bool) error {
	client, err := drive.NewClientForAccount(ctx, accountFlag, commandMetrics())
	if err != nil {
		return err
	}

	options := &drive.MoveOptions{NewName: newName}
	if parent != "" {
		options.AddParents = []string{parent}
		if !keepParents {
			info, err := client.GetFile(ctx, fileID)
			if err != nil {
				if drive.IsNotFound(err) {
					return fmt.Errorf("file %s not found", fileID)
				}
				return err
			}
			options.RemoveParents = info.Parents
		}
	}

	file, err := client.MoveFile(ctx, fileID, options)
	if err != nil {
		return err
	}

	fmt.Printf("Moved %q (%s)\n", file.Name, file.ID)
	return nil
}
