package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/teemow/gdrive/internal/config"
	"github.com/teemow/gdrive/internal/google"
	"github.com/teemow/gdrive/internal/instrumentation"
	"github.com/teemow/gdrive/internal/logging"
	"github.com/teemow/gdrive/internal/server"
)

// rootCmd represents the base command for the gdrive application
var rootCmd = &cobra.Command{
	Use:   "gdrive",
	Short: "Manage files in Google Drive from the command line",
	Long: `gdrive talks to the Google Drive API using OAuth2 credentials.

Authorize once with 'gdrive auth', then create folders, upload, download,
query, share and delete files. Several Google accounts can be used side by
side via --account.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupInvocation,
}

// Persistent flag values, shared by all subcommands
var (
	accountFlag string
	verboseFlag bool
	configFlag  string
)

// Per-invocation state, initialized in setupInvocation
var (
	settings      *config.Settings
	instrProvider *instrumentation.Provider
	metricsServer *server.MetricsServer
	auditLogger   *instrumentation.AuditLogger
)

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gdrive version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	// Shut down here rather than in a PersistentPostRunE, which cobra
	// skips when the command fails
	shutdownInvocation()

	if err != nil {
		os.Exit(1)
	}
}

// setupInvocation prepares logging, configuration and instrumentation before
// any subcommand runs.
func setupInvocation(cmd *cobra.Command, args []string) error {
	logging.Setup(verboseFlag)

	var err error
	settings, err = config.Load(afero.NewOsFs(), configFlag)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("account") && settings.Account != "" {
		accountFlag = settings.Account
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if err := instrConfig.Validate(); err != nil {
		return fmt.Errorf("invalid instrumentation configuration: %w", err)
	}

	instrProvider, err = instrumentation.NewProvider(cmd.Context(), instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	if instrProvider.Enabled() {
		auditLogger = instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging)

		if instrConfig.MetricsExporter == instrumentation.ExporterPrometheus {
			if err := startMetricsServer(instrConfig.MetricsAddr); err != nil {
				return err
			}
		}
	}

	return nil
}

// startMetricsServer starts the Prometheus scrape endpoint and waits until it
// is listening so a failure surfaces before the command does any work.
func startMetricsServer(addr string) error {
	ms, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		Enabled:                 true,
		InstrumentationProvider: instrProvider,
	})
	if err != nil {
		return fmt.Errorf("failed to create metrics server: %w", err)
	}

	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		if err := ms.StartWithReadySignal(ready); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ready:
		slog.Debug("metrics server started", "addr", ms.Addr())
	case err := <-errCh:
		return fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return fmt.Errorf("metrics server startup timed out")
	}

	metricsServer = ms
	return nil
}

// shutdownInvocation flushes instrumentation and stops the metrics server.
// The command context may already be cancelled on interrupt, so shutdown gets
// its own deadline.
func shutdownInvocation() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Warn("failed to shut down metrics server", logging.Err(err))
		}
		metricsServer = nil
	}

	if instrProvider != nil {
		if err := instrProvider.Shutdown(ctx); err != nil {
			slog.Warn("failed to shut down instrumentation", logging.Err(err))
		}
		instrProvider = nil
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&accountFlag, "account", google.DefaultAccount,
		"Google account name to use")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "log", "l", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Path to the config file (default: <user config dir>/gdrive/config.hjson)")

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newMoveCmd())
	rootCmd.AddCommand(newShareCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newAboutCmd())
	rootCmd.AddCommand(newVersionCmd())
}
