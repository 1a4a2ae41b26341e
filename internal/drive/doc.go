// Package drive provides a client for interacting with the Google Drive API.
//
// This package enables Google Drive file management operations including:
//   - Uploading files with metadata
//   - Listing and searching files and folders
//   - Downloading file content
//   - Deleting or trashing files
//   - Creating folders
//   - Moving and renaming files
//   - Managing file sharing and permissions
//   - Reading account and storage quota information
//
// Each client instance is bound to a named account, so several Google
// accounts can be used side by side.
//
// OAuth Authentication:
// This package uses the stored OAuth credentials from the google package.
// The OAuth scope includes full Google Drive access (drive scope), allowing
// read and write operations on all files in the user's Drive.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := drive.NewClientForAccount(ctx, "default", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Upload a file
//	file, err := client.UploadFile(ctx, "document.pdf", f, &drive.UploadOptions{
//	    ParentFolders: []string{folderID},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// List files
//	files, _, err := client.ListFiles(ctx, &drive.ListOptions{
//	    Query:      "mimeType='application/pdf'",
//	    MaxResults: 10,
//	})
package drive
