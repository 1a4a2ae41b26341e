package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/teemow/gdrive/internal/drive"
)

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show the authorized user and storage quota",
		Long: `Show who the stored credentials belong to and how much storage is used.

Doubles as a quick check that 'gdrive auth' worked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstrumented(cmd, "about", func(ctx context.Context) error {
				client, err := drive.NewClientForAccount(ctx, accountFlag, commandMetrics())
				if err != nil {
					return err
				}

				info, err := client.About(ctx)
				if err != nil {
					return err
				}

				fmt.Printf("User:    %s <%s>\n", info.User.DisplayName, info.User.EmailAddress)
				if info.QuotaLimit > 0 {
					fmt.Printf("Storage: %s of %s used\n",
						humanize.IBytes(uint64(info.QuotaUsed)),
						humanize.IBytes(uint64(info.QuotaLimit)))
				} else {
					fmt.Printf("Storage: %s used (no limit)\n",
						humanize.IBytes(uint64(info.QuotaUsed)))
				}
				return nil
			})
		},
	}

	return cmd
}
