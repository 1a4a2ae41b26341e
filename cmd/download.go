package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrive/internal/drive"
)

func newDownloadCmd() *cobra.Command {
	var (
		outputPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "download FILE_ID",
		Short: "Download a file from Google Drive",
		Long: `Download the content of a file by ID.

Without -o the file is written to the current directory under its Drive
name. An existing local file is never overwritten unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstrumented(cmd, "download", func(ctx context.Context) error {
				return runDownload(ctx, args[0], outputPath, force)
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Write the content to this path (default: the file's Drive name)")
	cmd.Flags().BoolVar(&force, "force", false,
		"Overwrite an existing local file")

	return cmd
}

func runDownload(ctx context.Context, fileID, outputPath string, force bool) error {
	client, err := drive.NewClientForAccount(ctx, accountFlag, commandMetrics())
	if err != nil {
		return err
	}

	info, err := client.GetFile(ctx, fileID)
	if err != nil {
		if drive.IsNotFound(err) {
			return fmt.Errorf("file %s not found", fileID)
		}
		return err
	}

	if outputPath == "" {
		outputPath = info.Name
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	out, err := os.OpenFile(outputPath, flags, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists, use --force to overwrite", outputPath)
		}
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	defer out.Close()

	content, err := client.DownloadFile(ctx, fileID)
	if err != nil {
		return err
	}
	defer content.Close()

	n, err := io.Copy(out, content)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	fmt.Printf("Downloaded %q (%d bytes) to %s\n", info.Name, n, outputPath)
	return nil
}
