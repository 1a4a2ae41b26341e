package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/gdrive/internal/google"
	"github.com/teemow/gdrive/internal/instrumentation"
	"github.com/teemow/gdrive/internal/logging"
)

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"
)

// Field selectors requested on each call so responses stay small.
const (
	fileFields       = "id, name, mimeType, size, createdTime, modifiedTime, webViewLink, webContentLink, parents, owners, shared, trashed"
	fileListFields   = "nextPageToken, files(" + fileFields + ", trashedTime)"
	fileDetailFields = fileFields + ", trashedTime, permissions"
	permissionFields = "id, type, role, emailAddress, domain, displayName"
	aboutFields      = "user(displayName, emailAddress, photoLink), storageQuota(usage, limit)"
)

// Client wraps the Google Drive API service
type Client struct {
	service *drive.Service
	account string // The account this client is associated with
	metrics *instrumentation.Metrics
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a new Google Drive client authenticated with the
// stored OAuth credentials for the given account. It fails when no usable
// credential exists; run gdrive auth first.
func NewClientForAccount(ctx context.Context, account string, metrics *instrumentation.Metrics) (*Client, error) {
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	store, err := google.NewTokenStore()
	if err != nil {
		return nil, err
	}

	httpClient, err := google.GetHTTPClientForAccount(ctx, store, account, metrics)
	if err != nil {
		return nil, err
	}

	service, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		service: service,
		account: account,
		metrics: metrics,
	}, nil
}

// IsNotFound reports whether err is a Drive API 404 for a missing file.
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

// instrument starts a client span for a Drive API call and returns a function
// that records the outcome on the span and in the operation metrics. fileID
// may be empty for calls that do not target a single file.
func (c *Client) instrument(ctx context.Context, operation, fileID string) (context.Context, func(error)) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, operation)
	builder := instrumentation.NewSpanAttributeBuilder().WithAccount(c.account)
	if fileID != "" {
		builder.WithResource("file", fileID)
	}
	span.SetAttributes(builder.Build()...)
	start := time.Now()

	return ctx, func(err error) {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		duration := time.Since(start)
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceDrive, operation, status, duration)
		slog.Debug("google api call",
			logging.Service(instrumentation.ServiceDrive),
			logging.Operation(operation),
			logging.Status(status),
			logging.Account(c.account),
			slog.Duration(logging.KeyDuration, duration),
			logging.Err(err))
		span.End()
	}
}

// UploadFile uploads a file to Google Drive
func (c *Client) UploadFile(ctx context.Context, name string, content io.Reader, options *UploadOptions) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if content == nil {
		return nil, fmt.Errorf("file content is required")
	}

	file := &drive.File{
		Name: name,
	}

	if options != nil {
		if len(options.ParentFolders) > 0 {
			file.Parents = options.ParentFolders
		}
		if options.Description != "" {
			file.Description = options.Description
		}
		if options.MimeType != "" {
			file.MimeType = options.MimeType
		}
		if options.ModifiedTime != nil {
			file.ModifiedTime = options.ModifiedTime.Format(time.RFC3339)
		}
	}

	ctx, done := c.instrument(ctx, instrumentation.OperationUpload, "")
	driveFile, err := c.service.Files.Create(file).
		Context(ctx).
		Media(content, googleapi.ContentType(file.MimeType)).
		Fields(fileFields).
		Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return convertToFileInfo(driveFile), nil
}

// buildListFilesQuery combines a user query with the trash filter. Trashed
// files are excluded unless explicitly requested.
func buildListFilesQuery(userQuery string, includeTrashed bool) string {
	if includeTrashed {
		return userQuery
	}
	if userQuery == "" {
		return "trashed=false"
	}
	return fmt.Sprintf("(%s) and trashed=false", userQuery)
}

// ListFiles lists files in Google Drive with optional filtering
func (c *Client) ListFiles(ctx context.Context, options *ListOptions) ([]*FileInfo, string, error) {
	if options == nil {
		options = &ListOptions{}
	}

	call := c.service.Files.List().
		Fields(fileListFields)

	if query := buildListFilesQuery(options.Query, options.IncludeTrashed); query != "" {
		call = call.Q(query)
	}
	if options.MaxResults > 0 {
		call = call.PageSize(int64(options.MaxResults))
	}
	if options.OrderBy != "" {
		call = call.OrderBy(options.OrderBy)
	}
	if options.PageToken != "" {
		call = call.PageToken(options.PageToken)
	}
	if options.Spaces != "" {
		call = call.Spaces(options.Spaces)
	}

	ctx, done := c.instrument(ctx, instrumentation.OperationList, "")
	fileList, err := call.Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list files: %w", err)
	}

	files := make([]*FileInfo, len(fileList.Files))
	for i, f := range fileList.Files {
		files[i] = convertToFileInfo(f)
	}

	return files, fileList.NextPageToken, nil
}

// GetFile retrieves metadata for a specific file
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	ctx, done := c.instrument(ctx, instrumentation.OperationGet, fileID)
	file, err := c.service.Files.Get(fileID).
		Context(ctx).
		Fields(fileDetailFields).
		Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	return convertToFileInfo(file), nil
}

// DownloadFile downloads the content of a file. The caller must close the
// returned reader.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	ctx, done := c.instrument(ctx, instrumentation.OperationDownload, fileID)
	resp, err := c.service.Files.Get(fileID).
		Context(ctx).
		Download()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}

	return resp.Body, nil
}

// DeleteFile permanently deletes a file from Google Drive
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("fileID is required")
	}

	ctx, done := c.instrument(ctx, instrumentation.OperationDelete, fileID)
	err := c.service.Files.Delete(fileID).Context(ctx).Do()
	done(err)
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}

	return nil
}

// TrashFile moves a file to the trash instead of deleting it permanently
func (c *Client) TrashFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	update := &drive.File{
		Trashed: true,
	}

	ctx, done := c.instrument(ctx, instrumentation.OperationUpdate, fileID)
	driveFile, err := c.service.Files.Update(fileID, update).
		Context(ctx).
		Fields(fileFields).
		Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to trash file %s: %w", fileID, err)
	}

	return convertToFileInfo(driveFile), nil
}

// CreateFolder creates a new folder in Google Drive
func (c *Client) CreateFolder(ctx context.Context, name string, parentFolders []string) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}

	file := &drive.File{
		Name:     name,
		MimeType: FolderMimeType,
	}

	if len(parentFolders) > 0 {
		file.Parents = parentFolders
	}

	ctx, done := c.instrument(ctx, instrumentation.OperationCreate, "")
	driveFile, err := c.service.Files.Create(file).
		Context(ctx).
		Fields(fileFields).
		Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	return convertToFileInfo(driveFile), nil
}

// MoveFile moves or renames a file
func (c *Client) MoveFile(ctx context.Context, fileID string, options *MoveOptions) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	if options == nil {
		return nil, fmt.Errorf("move options are required")
	}

	update := &drive.File{}
	if options.NewName != "" {
		update.Name = options.NewName
	}

	call := c.service.Files.Update(fileID, update).
		Fields(fileFields)

	if len(options.AddParents) > 0 {
		call = call.AddParents(strings.Join(options.AddParents, ","))
	}
	if len(options.RemoveParents) > 0 {
		call = call.RemoveParents(strings.Join(options.RemoveParents, ","))
	}

	ctx, done := c.instrument(ctx, instrumentation.OperationUpdate, fileID)
	driveFile, err := call.Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to move file: %w", err)
	}

	return convertToFileInfo(driveFile), nil
}

// ShareFile creates a permission on a file to share it
func (c *Client) ShareFile(ctx context.Context, fileID string, options *ShareOptions) (*Permission, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	if options == nil {
		return nil, fmt.Errorf("share options are required")
	}
	if options.Type == "" {
		return nil, fmt.Errorf("permission type is required")
	}
	if options.Role == "" {
		return nil, fmt.Errorf("permission role is required")
	}

	permission := &drive.Permission{
		Type: options.Type,
		Role: options.Role,
	}

	if options.EmailAddress != "" {
		permission.EmailAddress = options.EmailAddress
	}
	if options.Domain != "" {
		permission.Domain = options.Domain
	}

	call := c.service.Permissions.Create(fileID, permission).
		Fields(permissionFields)

	if options.SendNotificationEmail {
		call = call.SendNotificationEmail(true)
		if options.EmailMessage != "" {
			call = call.EmailMessage(options.EmailMessage)
		}
	}

	ctx, done := c.instrument(ctx, instrumentation.OperationShare, fileID)
	drivePermission, err := call.Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to share file: %w", err)
	}

	return convertToPermission(drivePermission), nil
}

// RemovePermission removes a permission from a file
func (c *Client) RemovePermission(ctx context.Context, fileID, permissionID string) error {
	if fileID == "" {
		return fmt.Errorf("fileID is required")
	}
	if permissionID == "" {
		return fmt.Errorf("permissionID is required")
	}

	ctx, done := c.instrument(ctx, instrumentation.OperationShare, fileID)
	err := c.service.Permissions.Delete(fileID, permissionID).Context(ctx).Do()
	done(err)
	if err != nil {
		return fmt.Errorf("failed to remove permission: %w", err)
	}

	return nil
}

// ListPermissions lists all permissions for a file
func (c *Client) ListPermissions(ctx context.Context, fileID string) ([]*Permission, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	ctx, done := c.instrument(ctx, instrumentation.OperationList, fileID)
	permList, err := c.service.Permissions.List(fileID).
		Context(ctx).
		Fields("permissions(" + permissionFields + ")").
		Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	permissions := make([]*Permission, len(permList.Permissions))
	for i, p := range permList.Permissions {
		permissions[i] = convertToPermission(p)
	}

	return permissions, nil
}

// About returns the authorized user and their storage quota
func (c *Client) About(ctx context.Context) (*AboutInfo, error) {
	ctx, done := c.instrument(ctx, instrumentation.OperationGet, "")
	about, err := c.service.About.Get().
		Context(ctx).
		Fields(aboutFields).
		Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to get account information: %w", err)
	}

	info := &AboutInfo{}
	if about.User != nil {
		info.User = User{
			DisplayName:  about.User.DisplayName,
			EmailAddress: about.User.EmailAddress,
			PhotoLink:    about.User.PhotoLink,
		}
	}
	if about.StorageQuota != nil {
		info.QuotaUsed = about.StorageQuota.Usage
		info.QuotaLimit = about.StorageQuota.Limit
	}

	return info, nil
}

// convertToFileInfo converts a Drive API File to our FileInfo type
func convertToFileInfo(f *drive.File) *FileInfo {
	fileInfo := &FileInfo{
		ID:             f.Id,
		Name:           f.Name,
		MimeType:       f.MimeType,
		Size:           f.Size,
		WebViewLink:    f.WebViewLink,
		WebContentLink: f.WebContentLink,
		Parents:        f.Parents,
		Shared:         f.Shared,
		Trashed:        f.Trashed,
	}

	// Parse timestamps
	if f.CreatedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
			fileInfo.CreatedTime = t
		}
	}
	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			fileInfo.ModifiedTime = t
		}
	}
	if f.TrashedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.TrashedTime); err == nil {
			fileInfo.TrashedTime = &t
		}
	}

	// Convert owners
	for _, owner := range f.Owners {
		fileInfo.Owners = append(fileInfo.Owners, User{
			DisplayName:  owner.DisplayName,
			EmailAddress: owner.EmailAddress,
			PhotoLink:    owner.PhotoLink,
		})
	}

	// Convert permissions if present
	for _, perm := range f.Permissions {
		fileInfo.Permissions = append(fileInfo.Permissions, *convertToPermission(perm))
	}

	return fileInfo
}

// convertToPermission converts a Drive API Permission to our Permission type
func convertToPermission(p *drive.Permission) *Permission {
	return &Permission{
		ID:           p.Id,
		Type:         p.Type,
		Role:         p.Role,
		EmailAddress: p.EmailAddress,
		Domain:       p.Domain,
		DisplayName:  p.DisplayName,
	}
}
