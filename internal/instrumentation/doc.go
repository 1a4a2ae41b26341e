// Package instrumentation provides OpenTelemetry instrumentation for the
// gdrive CLI.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for CLI commands, OAuth operations, and Google API calls
//   - Distributed tracing for command flows and API calls
//   - Prometheus metrics export via /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// HTTP Metrics (metrics endpoint, OAuth callback server):
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// OAuth Authentication Metrics:
//   - oauth_auth_total: Counter of OAuth authentication events by result
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// CLI Command Metrics:
//   - cli_command_invocations_total: Counter of command invocations by name and status
//   - cli_command_duration_seconds: Histogram of command execution durations
//
// # Tracing
//
// Tracing spans are created for:
//   - CLI command invocations (command.<name>)
//   - Google API calls (google.<service>.<operation>)
//   - OAuth token operations
//
// # Configuration
//
// Instrumentation is disabled by default for a one-shot CLI and can be
// enabled via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: gdrive)
//   - METRICS_ADDR: Listen address for the Prometheus scrape endpoint (default: :9090)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "gdrive",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record a Google API operation
//	recorder.RecordGoogleAPIOperation(ctx, "drive", "list", "success", time.Since(start))
//
//	// Record a command invocation
//	recorder.RecordCommandInvocation(ctx, "query", "success", time.Since(start))
package instrumentation
