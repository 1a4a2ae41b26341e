package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrive/internal/drive"
)

func newUploadCmd() *cobra.Command {
	var (
		renameTo    string
		parents     []string
		mimeType    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a file to Google Drive",
		Long: `Upload a local file to Google Drive.

The file is stored under its local name unless -t/--to gives another one.
Large files are sent with the resumable media upload, so interrupted
transfers are retried by the SDK.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstrumented(cmd, "upload", func(ctx context.Context) error {
				return runUpload(ctx, args[0], renameTo, parents, mimeType, description)
			})
		},
	}

	cmd.Flags().StringVarP(&renameTo, "to", "t", "",
		"Store the file under this name instead of its local name")
	cmd.Flags().StringArrayVarP(&parents, "parent", "p", nil,
		"Destination folder ID (repeatable)")
	cmd.Flags().StringVar(&mimeType, "mime", "",
		"MIME type of the file (detected when empty)")
	cmd.Flags().StringVar(&description, "description", "",
		"Short description stored with the file")

	return cmd
}

func runUpload(ctx context.Context, path, renameTo string, parents []string, mimeType, description string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name := renameTo
	if name == "" {
		name = filepath.Base(path)
	}

	client, err := drive.NewClientForAccount(ctx, accountFlag, commandMetrics())
	if err != nil {
		return err
	}

	file, err := client.UploadFile(ctx, name, f, &drive.UploadOptions{
		ParentFolders: parents,
		MimeType:      mimeType,
		Description:   description,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Uploaded %q with ID %s\n", file.Name, file.ID)
	return nil
}
