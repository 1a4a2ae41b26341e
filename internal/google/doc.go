// Package google provides OAuth2 authentication and token management for the
// Google Drive API.
//
// Credentials are stored per account in the user cache directory using the
// standard authorized-user JSON format, so one machine can hold tokens for
// several Google accounts side by side. The token store is written against
// afero, letting tests run on a memory filesystem.
//
// The authorization flow (AuthFlow) supports a local callback server for
// desktop use and a manual paste-the-code mode for headless machines.
package google
