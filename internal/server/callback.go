package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/teemow/gdrive/internal/instrumentation"
	"github.com/teemow/gdrive/internal/logging"
)

const (
	// DefaultCallbackPort is the default port for the OAuth callback server.
	DefaultCallbackPort = 8080

	// CallbackPath is the path the OAuth authorization redirect lands on.
	CallbackPath = "/callback"

	// DefaultCallbackReadTimeout is the read header timeout for the callback server.
	DefaultCallbackReadTimeout = 10 * time.Second

	// DefaultCallbackWriteTimeout is the write timeout for the callback server.
	DefaultCallbackWriteTimeout = 10 * time.Second
)

// callbackSuccessPage is shown in the browser once the code has been received.
const callbackSuccessPage = `<!DOCTYPE html>
<html>
<head><title>gdrive</title></head>
<body>
<p>Authorization complete. You can close this tab and return to the terminal.</p>
</body>
</html>
`

// CallbackServerConfig holds configuration for the OAuth callback server.
type CallbackServerConfig struct {
	// Port to listen on. Zero picks an ephemeral port.
	Port int

	// State is the expected OAuth state parameter. Redirects carrying a
	// different value are rejected and the server keeps waiting.
	State string

	// Logger is optional; the default slog logger is used when nil.
	Logger logging.Logger

	// Metrics is optional; HTTP requests to the callback endpoint are
	// recorded when set.
	Metrics *instrumentation.Metrics
}

// CallbackServer receives the OAuth authorization redirect on a loopback-only
// listener and hands the authorization code to the waiting flow.
type CallbackServer struct {
	httpServer *http.Server
	listener   net.Listener
	state      string
	port       int
	logger     logging.Logger
	metrics    *instrumentation.Metrics
	result     chan callbackResult
}

type callbackResult struct {
	code string
	err  error
}

// NewCallbackServer creates a new callback server with the given configuration.
func NewCallbackServer(config CallbackServerConfig) (*CallbackServer, error) {
	if config.Port < 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid callback port: %d", config.Port)
	}
	if config.State == "" {
		return nil, fmt.Errorf("state is required for the callback server")
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	metrics := config.Metrics
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	return &CallbackServer{
		state:   config.State,
		port:    config.Port,
		logger:  logger,
		metrics: metrics,
		result:  make(chan callbackResult, 1),
	}, nil
}

// Start binds the loopback listener and serves in the background.
// Binding errors (port already in use) are returned immediately.
func (s *CallbackServer) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on callback port %d: %w", s.port, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: DefaultCallbackReadTimeout,
		WriteTimeout:      DefaultCallbackWriteTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("callback server failed", "error", err)
		}
	}()

	s.logger.Debug("callback server listening", "addr", listener.Addr().String())
	return nil
}

// RedirectURL returns the redirect URL to register with the OAuth provider.
// Call after Start when an ephemeral port was requested.
func (s *CallbackServer) RedirectURL() string {
	port := s.port
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			port = addr.Port
		}
	}
	return fmt.Sprintf("http://localhost:%d%s", port, CallbackPath)
}

// WaitForCode blocks until the redirect delivers an authorization code, the
// provider reports an error, or the context is cancelled.
func (s *CallbackServer) WaitForCode(ctx context.Context) (string, error) {
	select {
	case res := <-s.result:
		return res.code, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for OAuth redirect: %w", ctx.Err())
	}
}

// Shutdown gracefully shuts down the callback server.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
	defer func() {
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, CallbackPath, status, time.Since(start))
	}()

	q := r.URL.Query()

	if q.Get("state") != s.state {
		// Not our redirect; reject the request but keep waiting
		s.logger.Warn("callback request with unexpected state", "remote", r.RemoteAddr)
		status = http.StatusBadRequest
		http.Error(w, "Invalid state parameter.", status)
		return
	}

	if errParam := q.Get("error"); errParam != "" {
		s.deliver(callbackResult{err: fmt.Errorf("authorization was denied: %s", errParam)})
		status = http.StatusBadRequest
		http.Error(w, "Authorization failed. You can close this tab.", status)
		return
	}

	code := q.Get("code")
	if code == "" {
		s.deliver(callbackResult{err: fmt.Errorf("OAuth redirect carried no authorization code")})
		status = http.StatusBadRequest
		http.Error(w, "Missing authorization code.", status)
		return
	}

	s.deliver(callbackResult{code: code})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, callbackSuccessPage)
}

// deliver hands the first result to the waiting flow; later results are dropped.
func (s *CallbackServer) deliver(res callbackResult) {
	select {
	case s.result <- res:
	default:
	}
}
