package probe

import (
	"context"
	"errors"
	"fmt"
)

// Drive metadata the prober asks for on every tick
const (
	AppDataFolder     = "appDataFolder"
	DefaultMarkerName = "file.txt"
	MarkerMimeType    = "text/plain"
	MarkerFields      = "id"
	QuotaFields       = "storageQuota/limit, storageQuota/usage"
)

// ErrQuotaUnavailable is returned when the storage service omits quota information
var ErrQuotaUnavailable = errors.New("storage quota missing from response")

// StorageClient defines the remote storage metadata operations used by the prober.
// This is a port implemented by the Drive adapter.
type StorageClient interface {
	// CreateMarkerFile creates an empty file and returns the requested fields
	CreateMarkerFile(ctx context.Context, req MarkerRequest) (*MarkerFile, error)

	// GetStorageQuota returns the account's storage usage and limit
	GetStorageQuota(ctx context.Context, req QuotaRequest) (*StorageQuota, error)
}

// MarkerRequest describes the zero-byte marker file created on each tick
type MarkerRequest struct {
	Name     string
	Parent   string
	MimeType string
	Fields   string
}

// NewMarkerRequest returns the request for a marker in the application data folder
func NewMarkerRequest(name string) MarkerRequest {
	if name == "" {
		name = DefaultMarkerName
	}
	return MarkerRequest{
		Name:     name,
		Parent:   AppDataFolder,
		MimeType: MarkerMimeType,
		Fields:   MarkerFields,
	}
}

func (r MarkerRequest) String() string {
	return fmt.Sprintf("files.create{name=%q, parents=[%s], mimeType=%s, size=0, fields=%s}",
		r.Name, r.Parent, r.MimeType, r.Fields)
}

// MarkerFile is the created marker as returned by the storage service
type MarkerFile struct {
	ID string
}

func (f MarkerFile) String() string {
	return fmt.Sprintf("File{id=%s}", f.ID)
}

// QuotaRequest selects the quota fields to fetch
type QuotaRequest struct {
	Fields string
}

// NewQuotaRequest returns the request for storage limit and usage
func NewQuotaRequest() QuotaRequest {
	return QuotaRequest{Fields: QuotaFields}
}

func (r QuotaRequest) String() string {
	return fmt.Sprintf("about.get{fields=%s}", r.Fields)
}

// StorageQuota holds storage usage information in bytes.
// A zero Limit means the account has unlimited storage.
type StorageQuota struct {
	Limit int64
	Usage int64
}

// Unlimited reports whether the account has no storage limit
func (q StorageQuota) Unlimited() bool {
	return q.Limit == 0
}

func (q StorageQuota) String() string {
	limit := "unlimited"
	if !q.Unlimited() {
		limit = fmt.Sprintf("%d", q.Limit)
	}
	return fmt.Sprintf("About{storageQuota={limit=%s, usage=%d}}", limit, q.Usage)
}
