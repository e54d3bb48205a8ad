package media

import (
	"context"
	"fmt"
	"strings"
)

// DefaultMimeType is sent when the media type of the file is not known
const DefaultMimeType = "application/octet-stream"

// Library defines the media-library operations used by the uploader.
// Creating an item is a two step process: raw bytes are uploaded first and
// the returned upload token is then referenced by a batch create request.
type Library interface {
	// Upload sends raw bytes and returns an opaque upload token
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)

	// BatchCreate creates media items from previously uploaded bytes
	BatchCreate(ctx context.Context, items NewMediaItems) (*BatchCreateResult, error)
}

// FileReader reads a local media file fully
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// UploadRequest contains the raw bytes of a single media file
type UploadRequest struct {
	FileName string
	MimeType string
	Data     []byte
}

func (r UploadRequest) String() string {
	return fmt.Sprintf("UploadMediaItemRequest{fileName=%s, mimeType=%s, size=%d}",
		r.FileName, r.MimeType, len(r.Data))
}

// UploadResult holds the token returned by a raw upload
type UploadResult struct {
	UploadToken string
}

func (r UploadResult) String() string {
	return fmt.Sprintf("UploadMediaItemResponse{uploadToken=%s}", r.UploadToken)
}

// NewMediaItem references uploaded bytes by token
type NewMediaItem struct {
	UploadToken string
	FileName    string
}

func (i NewMediaItem) String() string {
	return fmt.Sprintf("NewMediaItem{simpleMediaItem={uploadToken=%s, fileName=%s}}", i.UploadToken, i.FileName)
}

// NewMediaItems is the payload of a batch create request
type NewMediaItems []NewMediaItem

func (items NewMediaItems) String() string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ItemResult is the per-item outcome of a batch create
type ItemResult struct {
	UploadToken   string
	StatusCode    int64
	StatusMessage string
	MediaItemID   string
	ProductURL    string
}

// Created reports whether the item was created
func (r ItemResult) Created() bool {
	return r.StatusCode == 0 && r.MediaItemID != ""
}

func (r ItemResult) String() string {
	return fmt.Sprintf("NewMediaItemResult{uploadToken=%s, status={code=%d, message=%q}, mediaItem={id=%s, productUrl=%s}}",
		r.UploadToken, r.StatusCode, r.StatusMessage, r.MediaItemID, r.ProductURL)
}

// BatchCreateResult contains one result per requested item
type BatchCreateResult struct {
	Items []ItemResult
}

// Created returns the number of items that were created
func (r BatchCreateResult) Created() int {
	n := 0
	for _, item := range r.Items {
		if item.Created() {
			n++
		}
	}
	return n
}

func (r BatchCreateResult) String() string {
	parts := make([]string, len(r.Items))
	for i, item := range r.Items {
		parts[i] = item.String()
	}
	return "BatchCreateMediaItemsResponse{newMediaItemResults=[" + strings.Join(parts, ", ") + "]}"
}
