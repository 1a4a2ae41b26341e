package google

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/oauth2"
)

const (
	// tokenDirName is the directory under the user cache dir that holds
	// per-account credential files.
	tokenDirName = "gdrive"

	// legacyTokenFile is the unsuffixed credential file written by older
	// versions before accounts existed. It is migrated to the default
	// account on first use.
	legacyTokenFile = "credentials.json"

	tokenDirPerm  = 0700
	tokenFilePerm = 0600
)

// StoredCredentials is the on-disk credential format, the standard Google
// authorized-user JSON. Carrying the client ID and secret alongside the
// refresh token means commands after auth need no client secrets file, and
// the file can be read by other Google client libraries.
type StoredCredentials struct {
	Type         string    `json:"type"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	RefreshToken string    `json:"refresh_token"`
	AccessToken  string    `json:"token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Token converts the stored credentials into an oauth2.Token seeded with
// whatever access token is cached. An expired access token is fine; the
// token source refreshes it.
func (c *StoredCredentials) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// TokenStore persists per-account OAuth credentials on a filesystem.
// Backed by afero so tests can run against a memory filesystem.
type TokenStore struct {
	fs  afero.Fs
	dir string
}

// NewTokenStore returns a store rooted at the user cache directory.
func NewTokenStore() (*TokenStore, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine user cache directory: %w", err)
	}
	return NewTokenStoreWithFs(afero.NewOsFs(), filepath.Join(cacheDir, tokenDirName)), nil
}

// NewTokenStoreWithFs returns a store using the given filesystem and directory.
func NewTokenStoreWithFs(fs afero.Fs, dir string) *TokenStore {
	return &TokenStore{fs: fs, dir: dir}
}

// Dir returns the directory credential files are kept in.
func (s *TokenStore) Dir() string {
	return s.dir
}

// Path returns the credential file path for the given account.
func (s *TokenStore) Path(account string) (string, error) {
	if err := validateAccountName(account); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, tokenFileName(account)), nil
}

// Has reports whether a credential file exists for the given account.
func (s *TokenStore) Has(account string) bool {
	path, err := s.Path(account)
	if err != nil {
		return false
	}
	exists, err := afero.Exists(s.fs, path)
	return err == nil && exists
}

// Load reads the stored credentials for the given account.
func (s *TokenStore) Load(account string) (*StoredCredentials, error) {
	path, err := s.Path(account)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var creds StoredCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credential file %s: %w", path, err)
	}
	if creds.RefreshToken == "" {
		return nil, fmt.Errorf("credential file %s has no refresh token", path)
	}

	return &creds, nil
}

// Save writes the credentials for the given account, creating the store
// directory if needed. Files are private to the user.
func (s *TokenStore) Save(account string, creds *StoredCredentials) error {
	path, err := s.Path(account)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.dir, tokenDirPerm); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	if creds.Type == "" {
		creds.Type = "authorized_user"
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	if err := afero.WriteFile(s.fs, path, data, tokenFilePerm); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}

	return nil
}

// MigrateLegacyToken renames an unsuffixed credentials.json left behind by
// older versions to the default account's file. It is a no-op when there is
// nothing to migrate or the default account already has credentials.
func (s *TokenStore) MigrateLegacyToken() error {
	oldPath := filepath.Join(s.dir, legacyTokenFile)

	exists, err := afero.Exists(s.fs, oldPath)
	if err != nil || !exists {
		return nil
	}

	newPath, err := s.Path(DefaultAccount)
	if err != nil {
		return err
	}

	if newExists, err := afero.Exists(s.fs, newPath); err == nil && newExists {
		// Both files exist; keep the account file and leave the legacy one alone.
		return nil
	}

	if err := s.fs.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("failed to migrate legacy credential file: %w", err)
	}

	return nil
}

// DefaultAccount is the account used when none is specified.
const DefaultAccount = "default"

func tokenFileName(account string) string {
	return "credentials-" + account + ".json"
}

// validateAccountName ensures account names are safe to use as file name
// components. Only alphanumerics, hyphens and underscores are allowed.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	for _, r := range account {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return fmt.Errorf("invalid account name %q: only letters, digits, hyphens and underscores are allowed", account)
		}
	}
	return nil
}
