package instrumentation

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Status values for operation results.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// OAuth operation results.
const (
	OAuthResultSuccess = "success"
	OAuthResultFailure = "failure"
	OAuthResultExpired = "expired"
)

// Google service names for metrics and tracing labels.
const (
	ServiceDrive = "drive"
	ServiceOAuth = "oauth"
)

// Supported exporter types.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// DefaultMetricInterval is the export interval for push-based metric exporters.
const DefaultMetricInterval = 60 * time.Second

// Config holds the instrumentation configuration.
type Config struct {
	// ServiceName identifies this service in metrics and traces
	ServiceName string

	// ServiceVersion is the version reported in telemetry resource attributes
	ServiceVersion string

	// ServiceInstanceID uniquely identifies this instance (defaults to hostname)
	ServiceInstanceID string

	// Enabled controls whether any instrumentation is active.
	// Disabled by default: a one-shot CLI should not pay telemetry
	// overhead unless the operator asks for it.
	Enabled bool

	// MetricsExporter selects the metrics exporter: prometheus, otlp, stdout
	MetricsExporter string

	// TracingExporter selects the trace exporter: otlp, stdout, none
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint (host:port)
	OTLPEndpoint string

	// OTLPInsecure disables TLS for the OTLP exporter
	OTLPInsecure bool

	// TraceSamplingRate is the ratio of traces to sample (0.0 to 1.0)
	TraceSamplingRate float64

	// PrometheusEndpoint is the HTTP path for the Prometheus scrape handler
	PrometheusEndpoint string

	// MetricsAddr is the listen address for the metrics HTTP server that is
	// started when the prometheus exporter is active
	MetricsAddr string

	// DetailedLabels enables higher-cardinality metric labels (e.g. account)
	DetailedLabels bool

	// AuditLogging configures audit logging of command invocations
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig configures the audit logging behavior.
type AuditLoggingConfig struct {
	// Enabled controls whether audit records are emitted
	Enabled bool

	// IncludePII includes full email addresses in audit logs when true.
	// When false, anonymized identifiers are used.
	IncludePII bool

	// LogLevel is the level audit records are logged at (debug, info, warn)
	LogLevel string
}

// DefaultConfig returns the configuration derived from environment variables.
//
// Environment variables:
//   - OTEL_SERVICE_NAME: service name (default "gdrive")
//   - INSTRUMENTATION_ENABLED: enable telemetry (default false)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP collector endpoint
//   - OTEL_EXPORTER_OTLP_INSECURE: disable TLS for OTLP (default false)
//   - OTEL_TRACES_SAMPLER_ARG: trace sampling rate (default 0.1)
//   - METRICS_ADDR: metrics server listen address (default ":9090")
//   - METRICS_DETAILED_LABELS: enable high-cardinality labels (default false)
//   - AUDIT_LOGGING_ENABLED: enable audit logging (default true)
//   - AUDIT_LOGGING_INCLUDE_PII: log full emails (default false)
//   - AUDIT_LOGGING_LEVEL: audit log level (default "info")
func DefaultConfig() Config {
	hostname, _ := os.Hostname()

	return Config{
		ServiceName:        getEnvOrDefault("OTEL_SERVICE_NAME", "gdrive"),
		ServiceVersion:     "dev",
		ServiceInstanceID:  getEnvOrDefault("OTEL_SERVICE_INSTANCE_ID", hostname),
		Enabled:            getEnvBoolOrDefault("INSTRUMENTATION_ENABLED", false),
		MetricsExporter:    getEnvOrDefault("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:    getEnvOrDefault("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:       getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:       getEnvBoolOrDefault("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate:  getEnvFloatOrDefault("OTEL_TRACES_SAMPLER_ARG", 0.1),
		PrometheusEndpoint: getEnvOrDefault("PROMETHEUS_ENDPOINT", "/metrics"),
		MetricsAddr:        getEnvOrDefault("METRICS_ADDR", ":9090"),
		DetailedLabels:     getEnvBoolOrDefault("METRICS_DETAILED_LABELS", false),
		AuditLogging: AuditLoggingConfig{
			Enabled:    getEnvBoolOrDefault("AUDIT_LOGGING_ENABLED", true),
			IncludePII: getEnvBoolOrDefault("AUDIT_LOGGING_INCLUDE_PII", false),
			LogLevel:   getEnvOrDefault("AUDIT_LOGGING_LEVEL", "info"),
		},
	}
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0.0 || c.TraceSamplingRate > 1.0 {
		return fmt.Errorf("invalid trace sampling rate %f: must be between 0.0 and 1.0", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid metrics exporter %q: must be one of prometheus, otlp, stdout, none", c.MetricsExporter)
	}

	switch c.TracingExporter {
	case "", ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q: must be one of otlp, stdout, none", c.TracingExporter)
	}

	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when metrics exporter is otlp")
	}

	if c.TracingExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when tracing exporter is otlp")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
