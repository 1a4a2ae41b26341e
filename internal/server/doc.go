// Package server provides the HTTP servers used by the gdrive CLI.
//
// CallbackServer receives the OAuth authorization redirect on a loopback-only
// listener during the auth command. It validates the state parameter, hands
// the authorization code to the waiting flow, and rejects stray requests
// without giving up on the redirect.
//
// MetricsServer exposes Prometheus metrics and a health check endpoint for
// long-running invocations when instrumentation is enabled.
package server
