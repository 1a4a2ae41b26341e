package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/teemow/gdrive/internal/google"
	"github.com/teemow/gdrive/internal/instrumentation"
	"github.com/teemow/gdrive/internal/server"
)

func newAuthCmd() *cobra.Command {
	var (
		secretsFile string
		port        int
		manual      bool
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to a Google Drive account",
		Long: `Run the OAuth2 authorization flow and store the resulting credentials.

The client secrets JSON comes from the Google API Console. By default a
local web server receives the authorization redirect; use --manual on
machines without a browser and paste the authorization code instead.

Credentials are stored per account, so repeated runs with different
--account values authorize several Google accounts side by side.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstrumented(cmd, "auth", func(ctx context.Context) error {
				if !cmd.Flags().Changed("secrets") && settings != nil && settings.Secrets != "" {
					secretsFile = settings.Secrets
				}
				return runAuth(ctx, secretsFile, accountFlag, port, manual)
			})
		},
	}

	cmd.Flags().StringVarP(&secretsFile, "secrets", "s", "client_secret.json",
		"Path to the OAuth client secrets JSON from the Google API Console")
	cmd.Flags().IntVarP(&port, "port", "p", server.DefaultCallbackPort,
		"Port for the local authorization redirect")
	cmd.Flags().BoolVar(&manual, "manual", false,
		"Print the auth URL and read the code from stdin instead of starting a local server")

	return cmd
}

func runAuth(ctx context.Context, secretsFile, account string, port int, manual bool) error {
	store, err := google.NewTokenStore()
	if err != nil {
		return err
	}

	// Validate the account name before sending the user to the browser
	path, err := store.Path(account)
	if err != nil {
		return err
	}
	if store.Has(account) {
		fmt.Printf("Account %q is already authorized, replacing its stored credentials.\n", account)
	}

	conf, err := google.ConfigFromSecretsFile(afero.NewOsFs(), secretsFile)
	if err != nil {
		return err
	}

	flow := &google.AuthFlow{
		Config: conf,
		Port:   port,
		Manual: manual,
	}

	tok, err := flow.Run(ctx)
	if err != nil {
		commandMetrics().RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return err
	}
	commandMetrics().RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)

	if err := store.Save(account, google.NewStoredCredentials(conf, tok)); err != nil {
		return err
	}

	fmt.Printf("Authorized account %q. Credentials saved to %s\n", account, path)
	return nil
}
