package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/gdrive/internal/instrumentation"
	"github.com/teemow/gdrive/internal/logging"
)

// ConfigFromSecretsFile reads an OAuth client secrets file downloaded from
// the Google API Console (installed application or web application form) and
// returns the OAuth2 config with the Drive scope.
func ConfigFromSecretsFile(fs afero.Fs, path string) (*oauth2.Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secrets file %s: %w", path, err)
	}

	conf, err := google.ConfigFromJSON(data, DefaultOAuthScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secrets file %s: %w", path, err)
	}

	return conf, nil
}

// NewStoredCredentials combines an exchanged token with the client identity
// it was issued under, ready for the token store.
func NewStoredCredentials(conf *oauth2.Config, tok *oauth2.Token) *StoredCredentials {
	return &StoredCredentials{
		Type:         "authorized_user",
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		RefreshToken: tok.RefreshToken,
		AccessToken:  tok.AccessToken,
		Expiry:       tok.Expiry,
	}
}

// configForCredentials rebuilds the OAuth2 config a stored credential was
// issued under, which is all the token endpoint needs for a refresh.
func configForCredentials(creds *StoredCredentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       DefaultOAuthScopes,
	}
}

// GetTokenSourceForAccount returns an OAuth2 token source for the stored
// credentials of the given account. Refreshed access tokens are written back
// to the store so a later run can skip the refresh round trip.
// Returns an error telling the user to run auth when no usable credentials exist.
func GetTokenSourceForAccount(ctx context.Context, store *TokenStore, account string, metrics *instrumentation.Metrics) (oauth2.TokenSource, error) {
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	if err := store.MigrateLegacyToken(); err != nil {
		slog.Debug("legacy credential migration failed", logging.Err(err))
	}

	creds, err := store.Load(account)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", GetAuthenticationErrorMessage(account), err)
	}

	conf := configForCredentials(creds)
	ts := &savingTokenSource{
		ctx:     ctx,
		base:    conf.TokenSource(ctx, creds.Token()),
		store:   store,
		account: account,
		creds:   creds,
		metrics: metrics,
	}

	// Validate the credentials before handing out the source
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("stored credentials for account %q are invalid, run 'gdrive auth --account %s' to re-authorize: %w", account, account, err)
	}

	return ts, nil
}

// GetHTTPClientForAccount returns an HTTP client configured with OAuth2
// authentication for the given account.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func GetHTTPClientForAccount(ctx context.Context, store *TokenStore, account string, metrics *instrumentation.Metrics) (*http.Client, error) {
	ts, err := GetTokenSourceForAccount(ctx, store, account, metrics)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	baseTransport := &http.Transport{
		ForceAttemptHTTP2: false,
	}
	transport.Base = baseTransport

	return client, nil
}

// GetAuthenticationErrorMessage returns an actionable message for a missing
// or unusable credential.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("no usable OAuth credentials for account %q. Run 'gdrive auth --account %s' to authorize access to Google Drive", account, account)
}

// savingTokenSource persists refreshed tokens back to the store so the next
// invocation starts from a current access token.
type savingTokenSource struct {
	ctx     context.Context
	base    oauth2.TokenSource
	store   *TokenStore
	account string
	creds   *StoredCredentials
	metrics *instrumentation.Metrics

	mu sync.Mutex
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.base.Token()
	if err != nil {
		s.metrics.RecordOAuthTokenRefresh(s.ctx, instrumentation.OAuthResultFailure)
		return nil, err
	}

	if tok.AccessToken != s.creds.AccessToken {
		s.metrics.RecordOAuthTokenRefresh(s.ctx, instrumentation.OAuthResultSuccess)
		slog.Debug("access token refreshed",
			logging.Account(s.account),
			slog.String("token", logging.SanitizeToken(tok.AccessToken)))
		s.creds.AccessToken = tok.AccessToken
		s.creds.Expiry = tok.Expiry
		if tok.RefreshToken != "" {
			s.creds.RefreshToken = tok.RefreshToken
		}
		if err := s.store.Save(s.account, s.creds); err != nil {
			slog.Warn("failed to persist refreshed token",
				logging.Account(s.account),
				logging.Err(err))
		}
	}

	return tok, nil
}
