// Package photos implements media.Library on the Google Photos Library API.
package photos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ylexus/google-issue-193814298/domain/media"
	"github.com/ylexus/google-issue-193814298/infrastructure/apierr"
	"github.com/ylexus/google-issue-193814298/infrastructure/ratelimit"

	"google.golang.org/api/googleapi"
)

// DefaultBasePath is the root of the Photos Library REST API
const DefaultBasePath = "https://photoslibrary.googleapis.com/"

// LibraryScope grants read and append access to the user's Photos library
const LibraryScope = "https://www.googleapis.com/auth/photoslibrary"

// BatchCreateRequest is the body of mediaItems:batchCreate
type BatchCreateRequest struct {
	NewMediaItems []NewMediaItem `json:"newMediaItems"`
}

// NewMediaItem references uploaded bytes by their upload token
type NewMediaItem struct {
	SimpleMediaItem SimpleMediaItem `json:"simpleMediaItem"`
}

// SimpleMediaItem carries the upload token and the file name shown in Photos
type SimpleMediaItem struct {
	UploadToken string `json:"uploadToken"`
	FileName    string `json:"fileName,omitempty"`
}

// BatchCreateResponse is the body returned by mediaItems:batchCreate
type BatchCreateResponse struct {
	NewMediaItemResults []NewMediaItemResult `json:"newMediaItemResults"`
}

// NewMediaItemResult reports the outcome for one upload token
type NewMediaItemResult struct {
	UploadToken string     `json:"uploadToken"`
	Status      *Status    `json:"status,omitempty"`
	MediaItem   *MediaItem `json:"mediaItem,omitempty"`
}

// Status is a google.rpc.Status
type Status struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// MediaItem is the subset of a created media item we report
type MediaItem struct {
	ID         string `json:"id"`
	ProductURL string `json:"productUrl"`
}

// PhotosService defines the Photos Library operations used by Client.
// This allows mocking the Google Photos API in tests
type PhotosService interface {
	UploadBytes(ctx context.Context, fileName, mimeType string, data []byte) (string, error)
	BatchCreate(ctx context.Context, req *BatchCreateRequest) (*BatchCreateResponse, error)
}

// GooglePhotosService is the production implementation talking to the REST endpoints
type GooglePhotosService struct {
	httpClient *http.Client
	basePath   string
}

// NewGooglePhotosService creates the production service on top of an authenticated HTTP client
func NewGooglePhotosService(httpClient *http.Client) *GooglePhotosService {
	return &GooglePhotosService{
		httpClient: httpClient,
		basePath:   DefaultBasePath,
	}
}

// UploadBytes posts raw bytes to the uploads endpoint.
// The response body is the upload token as plain text.
func (s *GooglePhotosService) UploadBytes(ctx context.Context, fileName, mimeType string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleapi.ResolveRelative(s.basePath, "v1/uploads"), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("unable to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Goog-Upload-Content-Type", mimeType)
	req.Header.Set("X-Goog-Upload-File-Name", fileName)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer googleapi.CloseBody(resp)

	if err := googleapi.CheckResponse(resp); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("unable to read upload response: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}

// BatchCreate creates media items from upload tokens
func (s *GooglePhotosService) BatchCreate(ctx context.Context, body *BatchCreateRequest) (*BatchCreateResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("unable to encode batchCreate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleapi.ResolveRelative(s.basePath, "v1/mediaItems:batchCreate"), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("unable to build batchCreate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer googleapi.CloseBody(resp)

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, err
	}

	var out BatchCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("unable to decode batchCreate response: %w", err)
	}
	return &out, nil
}

// Client implements media.Library using the Google Photos Library API
type Client struct {
	photosService PhotosService
	limiter       *ratelimit.Limiter
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithPhotosService sets a custom photos service (for testing)
func WithPhotosService(svc PhotosService) ClientOption {
	return func(c *Client) {
		c.photosService = svc
	}
}

// WithRateLimiter sets the limiter consulted before every request
func WithRateLimiter(l *ratelimit.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient creates a new Google Photos client.
// If WithPhotosService is given, httpClient is not used.
func NewClient(httpClient *http.Client, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.limiter == nil {
		c.limiter = ratelimit.New(ratelimit.Photos, ratelimit.Config{})
	}

	if c.photosService == nil {
		if httpClient == nil {
			return nil, fmt.Errorf("unable to create photos service: no authenticated HTTP client")
		}
		c.photosService = NewGooglePhotosService(httpClient)
	}

	return c, nil
}

// Upload implements media.Library
func (c *Client) Upload(ctx context.Context, req media.UploadRequest) (*media.UploadResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = media.DefaultMimeType
	}

	token, err := c.photosService.UploadBytes(ctx, req.FileName, mimeType, req.Data)
	if err != nil {
		return nil, fail("failed to upload media bytes", err)
	}

	return &media.UploadResult{UploadToken: token}, nil
}

// BatchCreate implements media.Library
func (c *Client) BatchCreate(ctx context.Context, items media.NewMediaItems) (*media.BatchCreateResult, error) {
	if len(items) == 0 {
		return nil, media.ErrNoItems
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := &BatchCreateRequest{NewMediaItems: make([]NewMediaItem, 0, len(items))}
	for _, item := range items {
		req.NewMediaItems = append(req.NewMediaItems, NewMediaItem{
			SimpleMediaItem: SimpleMediaItem{
				UploadToken: item.UploadToken,
				FileName:    item.FileName,
			},
		})
	}

	resp, err := c.photosService.BatchCreate(ctx, req)
	if err != nil {
		return nil, fail("failed to create media items", err)
	}

	result := &media.BatchCreateResult{}
	for _, r := range resp.NewMediaItemResults {
		item := media.ItemResult{UploadToken: r.UploadToken}
		if r.Status != nil {
			item.StatusCode = r.Status.Code
			item.StatusMessage = r.Status.Message
		}
		if r.MediaItem != nil {
			item.MediaItemID = r.MediaItem.ID
			item.ProductURL = r.MediaItem.ProductURL
		}
		result.Items = append(result.Items, item)
	}

	return result, nil
}

func fail(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, apierr.Wrap(err))
}

// Ensure Client implements media.Library
var _ media.Library = (*Client)(nil)
