package google

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/gdrive/internal/server"
)

// OOBRedirectURL is the out-of-band redirect used in manual mode, where the
// provider displays the authorization code for the user to paste.
const OOBRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// AuthFlow runs the installed-application authorization flow against
// Google's consent page and exchanges the resulting authorization code for a
// token. The exchange carries a PKCE verifier so the code is bound to this
// process.
type AuthFlow struct {
	// Config is the OAuth2 client configuration from the secrets file.
	// Its RedirectURL is set by the flow.
	Config *oauth2.Config

	// Port for the local callback server. Ignored in manual mode.
	Port int

	// Manual skips the callback server; the authorization code is read from In.
	Manual bool

	// Out receives user-facing prompts and the authorization URL.
	// Defaults to os.Stdout.
	Out io.Writer

	// In is read for the authorization code in manual mode.
	// Defaults to os.Stdin.
	In io.Reader
}

// Run executes the flow and returns the exchanged token.
func (f *AuthFlow) Run(ctx context.Context) (*oauth2.Token, error) {
	if f.Out == nil {
		f.Out = os.Stdout
	}
	if f.In == nil {
		f.In = os.Stdin
	}

	state, err := newState()
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	var code string
	if f.Manual {
		code, err = f.collectCodeManually(state, verifier)
	} else {
		code, err = f.collectCodeViaCallback(ctx, state, verifier)
	}
	if err != nil {
		return nil, err
	}

	tok, err := f.Config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("authorization succeeded but no refresh token was issued")
	}

	return tok, nil
}

// authURL builds the consent page URL. Offline access and a forced approval
// prompt make sure a refresh token is issued even for repeat authorizations.
func (f *AuthFlow) authURL(state, verifier string) string {
	return f.Config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
}

func (f *AuthFlow) collectCodeManually(state, verifier string) (string, error) {
	f.Config.RedirectURL = OOBRedirectURL

	fmt.Fprintf(f.Out, "Visit the following URL in your browser to authorize gdrive:\n\n%s\n\n", f.authURL(state, verifier))
	fmt.Fprint(f.Out, "Enter the authorization code: ")

	scanner := bufio.NewScanner(f.In)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read authorization code: %w", err)
		}
		return "", fmt.Errorf("no authorization code entered")
	}

	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return "", fmt.Errorf("no authorization code entered")
	}
	return code, nil
}

func (f *AuthFlow) collectCodeViaCallback(ctx context.Context, state, verifier string) (string, error) {
	cb, err := server.NewCallbackServer(server.CallbackServerConfig{
		Port:  f.Port,
		State: state,
	})
	if err != nil {
		return "", err
	}

	if err := cb.Start(); err != nil {
		return "", err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = cb.Shutdown(shutdownCtx)
	}()

	f.Config.RedirectURL = cb.RedirectURL()

	fmt.Fprintf(f.Out, "Visit the following URL in your browser to authorize gdrive:\n\n%s\n\n", f.authURL(state, verifier))
	fmt.Fprintln(f.Out, "Waiting for the authorization redirect...")

	return cb.WaitForCode(ctx)
}

// newState returns a random value tying the redirect back to this flow.
func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state parameter: %w", err)
	}
	return hex.EncodeToString(b), nil
}
