package probe

import (
	"context"
	"fmt"

	"github.com/ylexus/google-issue-193814298/domain/exchange"
	"github.com/ylexus/google-issue-193814298/domain/probe"
)

// Service performs the periodic storage metadata probe
type Service struct {
	storage  probe.StorageClient
	recorder exchange.Recorder
	marker   probe.MarkerRequest
	quota    probe.QuotaRequest
}

// NewService creates a new probe service. An empty markerName selects the default.
func NewService(storage probe.StorageClient, recorder exchange.Recorder, markerName string) *Service {
	return &Service{
		storage:  storage,
		recorder: recorder,
		marker:   probe.NewMarkerRequest(markerName),
		quota:    probe.NewQuotaRequest(),
	}
}

// Tick creates a marker file and then fetches the storage quota.
// Both exchanges are recorded; the first failure ends the tick.
func (s *Service) Tick(ctx context.Context) error {
	s.recorder.Out(s.marker)
	file, err := s.storage.CreateMarkerFile(ctx, s.marker)
	if err != nil {
		return fmt.Errorf("create marker file: %w", err)
	}
	s.recorder.In(file)

	s.recorder.Out(s.quota)
	quota, err := s.storage.GetStorageQuota(ctx, s.quota)
	if err != nil {
		return fmt.Errorf("get storage quota: %w", err)
	}
	s.recorder.In(quota)

	return nil
}
