package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// CommandInvocation captures all information about a CLI command invocation
// for audit logging. This provides an audit trail for every operation the
// tool performs against a user's Drive.
//
// # Privacy Considerations
//
// The UserEmail field contains PII. When logging, consider:
//   - Using UserDomain() to get only the domain for metrics/general logs
//   - Only logging full email in audit-specific log streams
//   - Ensuring audit logs have appropriate access controls
type CommandInvocation struct {
	// Command name
	Command string

	// User identity (from OAuth, when known)
	UserEmail string

	// Target information for Google services
	Account     string // Account name (default, work, personal)
	ServiceName string // Google service (drive, oauth)
	Operation   string // Operation type (list, get, create, update, delete, upload)

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// UserDomain returns the domain portion of the user's email for lower-cardinality logging.
func (ci *CommandInvocation) UserDomain() string {
	return ExtractUserDomain(ci.UserEmail)
}

// Status returns "success" or "error" based on the Success field.
func (ci *CommandInvocation) Status() string {
	if ci.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
// This provides a consistent set of fields for all command invocation logs.
//
// # Cardinality
//
// This function uses cardinality-controlled values (user_domain)
// for metrics-compatible logging. For full audit logging, use LogAuditAttrs.
func (ci *CommandInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("command", ci.Command),
		slog.String("user_domain", ci.UserDomain()),
		slog.Duration("duration", ci.Duration),
		slog.Bool("success", ci.Success),
	}

	// Add optional fields only if present
	if ci.Account != "" && ci.Account != "default" {
		attrs = append(attrs, slog.String("account", ci.Account))
	}
	if ci.ServiceName != "" {
		attrs = append(attrs, slog.String("service", ci.ServiceName))
	}
	if ci.Operation != "" {
		attrs = append(attrs, slog.String("operation", ci.Operation))
	}
	if ci.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ci.TraceID))
	}
	if ci.Error != "" {
		attrs = append(attrs, slog.String("error", ci.Error))
	}

	return attrs
}

// LogAuditAttrs returns slog attributes for full audit logging.
// This includes the full user email for compliance/audit purposes.
//
// # Security Warning
//
// This method includes PII (full email). Ensure audit logs are:
//   - Stored securely with appropriate access controls
//   - Not exposed to general monitoring dashboards
//   - Retained according to compliance requirements
func (ci *CommandInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("command", ci.Command),
		slog.String("user", ci.UserEmail),
		slog.Duration("duration", ci.Duration),
		slog.Bool("success", ci.Success),
	}

	// Add all optional fields
	if ci.Account != "" {
		attrs = append(attrs, slog.String("account", ci.Account))
	}
	if ci.ServiceName != "" {
		attrs = append(attrs, slog.String("service", ci.ServiceName))
	}
	if ci.Operation != "" {
		attrs = append(attrs, slog.String("operation", ci.Operation))
	}
	if ci.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ci.TraceID))
	}
	if ci.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ci.SpanID))
	}
	if ci.Error != "" {
		attrs = append(attrs, slog.String("error", ci.Error))
	}

	return attrs
}

// NewCommandInvocation creates a new CommandInvocation with timing started.
// Call Complete() when the command finishes.
func NewCommandInvocation(command string) *CommandInvocation {
	return &CommandInvocation{
		Command:   command,
		StartTime: time.Now(),
	}
}

// WithUser sets the user identity information.
func (ci *CommandInvocation) WithUser(email string) *CommandInvocation {
	ci.UserEmail = email
	return ci
}

// WithAccount sets the Google account name.
func (ci *CommandInvocation) WithAccount(account string) *CommandInvocation {
	ci.Account = account
	return ci
}

// WithService sets the Google service and operation.
func (ci *CommandInvocation) WithService(serviceName, operation string) *CommandInvocation {
	ci.ServiceName = serviceName
	ci.Operation = operation
	return ci
}

// WithSpanContext extracts trace context from the current span.
func (ci *CommandInvocation) WithSpanContext(ctx context.Context) *CommandInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ci.TraceID = span.SpanContext().TraceID().String()
		ci.SpanID = span.SpanContext().SpanID().String()
	}
	return ci
}

// Complete marks the invocation as completed and calculates duration.
// Returns the same CommandInvocation for method chaining.
func (ci *CommandInvocation) Complete(success bool, err error) *CommandInvocation {
	ci.Duration = time.Since(ci.StartTime)
	ci.Success = success
	if err != nil {
		ci.Error = err.Error()
	}
	return ci
}

// CompleteWithError marks the invocation as failed with the given error.
func (ci *CommandInvocation) CompleteWithError(err error) *CommandInvocation {
	return ci.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ci *CommandInvocation) CompleteSuccess() *CommandInvocation {
	return ci.Complete(true, nil)
}

// AuditLogger provides structured audit logging for command invocations.
// It wraps slog.Logger with convenience methods for logging command executions.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// By default, PII is not included in logs (anonymized identifiers are used instead).
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: false,
		enabled:    true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// SetIncludePII sets whether to include full email addresses in audit logs.
func (al *AuditLogger) SetIncludePII(include bool) {
	al.includePII = include
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogCommandInvocation logs a command invocation using the standard log attributes.
// This is suitable for general operational logging with cardinality controls.
// If the logger is configured with IncludePII, full user emails are logged;
// otherwise, only domain-based anonymized identifiers are used.
func (al *AuditLogger) LogCommandInvocation(ci *CommandInvocation) {
	if !al.enabled {
		return
	}

	// Choose between PII and anonymized logging based on configuration
	var attrs []slog.Attr
	if al.includePII {
		attrs = ci.LogAuditAttrs()
	} else {
		attrs = ci.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ci.Success {
		al.logger.Info("command_executed", args...)
	} else {
		al.logger.Warn("command_failed", args...)
	}
}

// LogCommandAudit logs a command invocation with full audit details.
// This includes PII (full email addresses) for compliance/audit purposes.
// SECURITY: Ensure audit logs are routed to secure storage with appropriate access controls.
//
// Note: This method respects the enabled flag but always includes PII when called,
// regardless of the IncludePII configuration. Use LogCommandInvocation for
// configuration-aware logging.
func (al *AuditLogger) LogCommandAudit(ci *CommandInvocation) {
	if !al.enabled {
		return
	}

	attrs := ci.LogAuditAttrs()
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	al.logger.Info("command_audit", args...)
}
