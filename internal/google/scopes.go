package google

// DefaultOAuthScopes are the Google OAuth scopes requested during authorization.
// These scopes are used consistently across the application for OAuth configurations.
//
// Full Drive access is required: the tool creates, uploads, downloads, moves,
// shares and deletes arbitrary files, which the narrower drive.file scope does
// not cover for files created outside this client.
var DefaultOAuthScopes = []string{
	// Google Drive scope
	"https://www.googleapis.com/auth/drive",
}
