// Package cmd implements the command-line interface for gdrive.
//
// This package provides the following commands:
//   - auth: Authorize access to a Google Drive account
//   - create: Create a folder
//   - upload: Upload a file
//   - query: Find files whose name contains a term
//   - list: List files with the Drive query language
//   - info: Show metadata for a file
//   - download: Download file content
//   - move: Move or rename a file
//   - share: Grant, list or revoke permissions
//   - delete: Delete or trash a file
//   - about: Show the authorized user and storage quota
//   - version: Display version information
//
// All commands honor the persistent --account flag, so several Google
// accounts can be used side by side.
package cmd
