package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrive/internal/instrumentation"
	"github.com/teemow/gdrive/internal/logging"
)

// commandMetrics returns the active metrics recorder. Never nil; recording on
// the zero value is a no-op.
func commandMetrics() *instrumentation.Metrics {
	if instrProvider != nil {
		if m := instrProvider.Metrics(); m != nil {
			return m
		}
	}
	return &instrumentation.Metrics{}
}

// runInstrumented wraps a command's work with a span, invocation metrics and
// an audit record.
//
// Usage:
//
//	RunE: func(cmd *cobra.Command, args []string) error {
//		return runInstrumented(cmd, "upload", func(ctx context.Context) error {
//			...
//		})
//	}
func runInstrumented(cmd *cobra.Command, name string, fn func(ctx context.Context) error) error {
	ctx, span := instrumentation.StartCommandSpan(cmd.Context(), name)
	defer span.End()

	logger := logging.WithCommand(slog.Default(), name)
	logger.Debug("command starting", logging.Account(accountFlag))

	start := time.Now()
	invocation := instrumentation.NewCommandInvocation(name).
		WithSpanContext(ctx).
		WithAccount(accountFlag)

	err := fn(ctx)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		invocation.CompleteWithError(err)
		instrumentation.SetSpanError(span, err)
	} else {
		invocation.CompleteSuccess()
		instrumentation.SetSpanSuccess(span)
	}

	logger.Debug("command finished",
		logging.Status(status),
		slog.Duration(logging.KeyDuration, duration),
		logging.Err(err))

	commandMetrics().RecordCommandInvocationWithAccount(ctx, name, status, accountFlag, duration)

	if auditLogger != nil {
		auditLogger.LogCommandInvocation(invocation)
	}

	return err
}
