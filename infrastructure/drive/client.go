package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/ylexus/google-issue-193814298/domain/probe"
	"github.com/ylexus/google-issue-193814298/infrastructure/apierr"
	"github.com/ylexus/google-issue-193814298/infrastructure/ratelimit"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	CreateFile(ctx context.Context, file *drive.File, content io.Reader, mimeType, fields string) (*drive.File, error)
	GetAbout(ctx context.Context, fields string) (*drive.About, error)
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// CreateFile uploads content as a new file, returning only the requested fields
func (s *GoogleDriveService) CreateFile(ctx context.Context, file *drive.File, content io.Reader, mimeType, fields string) (*drive.File, error) {
	return s.service.Files.Create(file).
		Media(content, googleapi.ContentType(mimeType)).
		Fields(googleapi.Field(fields)).
		Context(ctx).
		Do()
}

// GetAbout returns account information restricted to fields
func (s *GoogleDriveService) GetAbout(ctx context.Context, fields string) (*drive.About, error) {
	return s.service.About.Get().
		Fields(googleapi.Field(fields)).
		Context(ctx).
		Do()
}

// Client implements probe.StorageClient using Google Drive API
type Client struct {
	driveService DriveService
	limiter      *ratelimit.Limiter
	userAgent    string
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// WithRateLimiter sets the limiter consulted before every request
func WithRateLimiter(l *ratelimit.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithApplicationName sets the user agent reported to the Drive API
func WithApplicationName(name string) ClientOption {
	return func(c *Client) {
		c.userAgent = name
	}
}

// NewClient creates a new Google Drive client on top of an authenticated HTTP client.
// If WithDriveService is given, httpClient is not used.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.limiter == nil {
		c.limiter = ratelimit.New(ratelimit.Drive, ratelimit.Config{})
	}

	// If no custom drive service was provided, create a real one
	if c.driveService == nil {
		if httpClient == nil {
			return nil, fmt.Errorf("unable to create drive service: no authenticated HTTP client")
		}
		svcOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
		if c.userAgent != "" {
			svcOpts = append(svcOpts, option.WithUserAgent(c.userAgent))
		}
		srv, err := drive.NewService(ctx, svcOpts...)
		if err != nil {
			return nil, fmt.Errorf("unable to create drive service: %w", err)
		}
		c.driveService = &GoogleDriveService{service: srv}
	}

	return c, nil
}

// CreateMarkerFile implements probe.StorageClient
func (c *Client) CreateMarkerFile(ctx context.Context, req probe.MarkerRequest) (*probe.MarkerFile, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	file := &drive.File{
		Name:    req.Name,
		Parents: []string{req.Parent},
	}
	created, err := c.driveService.CreateFile(ctx, file, bytes.NewReader(nil), req.MimeType, req.Fields)
	if err != nil {
		return nil, c.fail("failed to create marker file", err)
	}

	return &probe.MarkerFile{ID: created.Id}, nil
}

// GetStorageQuota implements probe.StorageClient
func (c *Client) GetStorageQuota(ctx context.Context, req probe.QuotaRequest) (*probe.StorageQuota, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	about, err := c.driveService.GetAbout(ctx, req.Fields)
	if err != nil {
		return nil, c.fail("failed to get storage quota", err)
	}
	if about.StorageQuota == nil {
		return nil, probe.ErrQuotaUnavailable
	}

	return &probe.StorageQuota{
		Limit: about.StorageQuota.Limit,
		Usage: about.StorageQuota.Usage,
	}, nil
}

// fail maps the API error; the limiter is left untouched so the next tick is not delayed
func (c *Client) fail(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, apierr.Wrap(err))
}

// Ensure Client implements probe.StorageClient
var _ probe.StorageClient = (*Client)(nil)
