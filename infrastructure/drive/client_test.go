package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ylexus/google-issue-193814298/domain/probe"
	"github.com/ylexus/google-issue-193814298/infrastructure/apierr"
	"github.com/ylexus/google-issue-193814298/infrastructure/ratelimit"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// mockDriveService is a mock implementation for testing
type mockDriveService struct {
	shouldFail   bool
	failError    error
	storageLimit int64
	storageUsage int64
	noQuota      bool
	created      []*drive.File
	contents     []string
	mimeTypes    []string
	fields       []string
}

func (m *mockDriveService) CreateFile(ctx context.Context, file *drive.File, content io.Reader, mimeType, fields string) (*drive.File, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	b, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	m.created = append(m.created, file)
	m.contents = append(m.contents, string(b))
	m.mimeTypes = append(m.mimeTypes, mimeType)
	m.fields = append(m.fields, fields)
	return &drive.File{Id: fmt.Sprintf("created-%d", len(m.created))}, nil
}

func (m *mockDriveService) GetAbout(ctx context.Context, fields string) (*drive.About, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	m.fields = append(m.fields, fields)
	if m.noQuota {
		return &drive.About{}, nil
	}
	return &drive.About{
		StorageQuota: &drive.AboutStorageQuota{
			Limit: m.storageLimit,
			Usage: m.storageUsage,
		},
	}, nil
}

func newTestClient(t *testing.T, mock *mockDriveService, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{WithDriveService(mock)}, opts...)
	client, err := NewClient(context.Background(), nil, opts...)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestNewClient_RequiresHTTPClient(t *testing.T) {
	_, err := NewClient(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error without http client or drive service")
	}
}

func TestNewClient_BuildsRealService(t *testing.T) {
	client, err := NewClient(context.Background(), http.DefaultClient, WithApplicationName("google-issue-193814298"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := client.driveService.(*GoogleDriveService); !ok {
		t.Errorf("expected GoogleDriveService, got %T", client.driveService)
	}
}

func TestClient_CreateMarkerFile(t *testing.T) {
	mock := &mockDriveService{}
	client := newTestClient(t, mock)

	file, err := client.CreateMarkerFile(context.Background(), probe.NewMarkerRequest(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if file.ID != "created-1" {
		t.Errorf("expected ID 'created-1', got %q", file.ID)
	}
	if len(mock.created) != 1 {
		t.Fatalf("expected 1 created file, got %d", len(mock.created))
	}
	created := mock.created[0]
	if created.Name != "file.txt" {
		t.Errorf("expected name 'file.txt', got %q", created.Name)
	}
	if len(created.Parents) != 1 || created.Parents[0] != "appDataFolder" {
		t.Errorf("expected parent appDataFolder, got %v", created.Parents)
	}
	if mock.contents[0] != "" {
		t.Errorf("expected zero-byte content, got %d bytes", len(mock.contents[0]))
	}
	if mock.mimeTypes[0] != "text/plain" {
		t.Errorf("expected text/plain, got %q", mock.mimeTypes[0])
	}
	if mock.fields[0] != "id" {
		t.Errorf("expected fields 'id', got %q", mock.fields[0])
	}
}

func TestClient_GetStorageQuota(t *testing.T) {
	tests := []struct {
		name      string
		mock      *mockDriveService
		wantLimit int64
		wantUsage int64
		wantErr   error
		errMsg    string
	}{
		{
			name: "returns storage quota successfully",
			mock: &mockDriveService{
				storageLimit: 15000000000, // 15 GB
				storageUsage: 5000000000,  // 5 GB
			},
			wantLimit: 15000000000,
			wantUsage: 5000000000,
		},
		{
			name:    "quota missing from response",
			mock:    &mockDriveService{noQuota: true},
			wantErr: probe.ErrQuotaUnavailable,
		},
		{
			name: "handles API error",
			mock: &mockDriveService{
				shouldFail: true,
				failError:  &googleapi.Error{Code: http.StatusForbidden, Message: "insufficientPermissions"},
			},
			wantErr: apierr.ErrForbidden,
			errMsg:  "failed to get storage quota",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.mock)

			quota, err := client.GetStorageQuota(context.Background(), probe.NewQuotaRequest())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if quota.Limit != tt.wantLimit || quota.Usage != tt.wantUsage {
				t.Errorf("expected %d/%d, got %d/%d", tt.wantUsage, tt.wantLimit, quota.Usage, quota.Limit)
			}
			if tt.mock.fields[0] != probe.QuotaFields {
				t.Errorf("expected fields %q, got %q", probe.QuotaFields, tt.mock.fields[0])
			}
		})
	}
}

// failOnceDriveService rejects the first call with a rate limit error
type failOnceDriveService struct {
	mockDriveService
	calls int
}

func (m *failOnceDriveService) CreateFile(ctx context.Context, file *drive.File, content io.Reader, mimeType, fields string) (*drive.File, error) {
	m.calls++
	if m.calls == 1 {
		return nil, &googleapi.Error{Code: http.StatusTooManyRequests, Header: http.Header{"Retry-After": []string{"60"}}}
	}
	return m.mockDriveService.CreateFile(ctx, file, content, mimeType, fields)
}

func TestClient_RateLimitErrorDoesNotDelayNextCall(t *testing.T) {
	svc := &failOnceDriveService{}
	client, err := NewClient(context.Background(), nil,
		WithDriveService(svc),
		WithRateLimiter(ratelimit.New(ratelimit.Drive, ratelimit.Config{RequestsPerSecond: 100, Burst: 10})))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.CreateMarkerFile(context.Background(), probe.NewMarkerRequest(""))
	if !errors.Is(err, apierr.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	file, err := client.CreateMarkerFile(ctx, probe.NewMarkerRequest(""))
	if err != nil {
		t.Fatalf("expected the next call to reach Drive immediately, got %v", err)
	}
	if file.ID != "created-1" {
		t.Errorf("expected ID 'created-1', got %q", file.ID)
	}
	if svc.calls != 2 {
		t.Errorf("expected 2 calls to Drive, got %d", svc.calls)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	mock := &mockDriveService{}
	client := newTestClient(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.GetStorageQuota(ctx, probe.NewQuotaRequest()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(mock.fields) != 0 {
		t.Errorf("expected no request to Drive, got %d", len(mock.fields))
	}
}
