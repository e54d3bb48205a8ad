package upload

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ylexus/google-issue-193814298/domain/exchange"
	"github.com/ylexus/google-issue-193814298/domain/media"
)

// Service uploads a single local file to the media library
type Service struct {
	library  media.Library
	reader   media.FileReader
	recorder exchange.Recorder
	path     string
	mimeType string
}

// NewService creates a new upload service for the file at path
func NewService(library media.Library, reader media.FileReader, recorder exchange.Recorder, path, mimeType string) *Service {
	if mimeType == "" {
		mimeType = media.DefaultMimeType
	}
	return &Service{
		library:  library,
		reader:   reader,
		recorder: recorder,
		path:     path,
		mimeType: mimeType,
	}
}

// Run reads the file, uploads its bytes and creates a media item from the
// returned upload token. There is no retry; the first failure is returned.
func (s *Service) Run(ctx context.Context) error {
	data, err := s.reader.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read media file: %w", err)
	}

	req := media.UploadRequest{
		FileName: filepath.Base(s.path),
		MimeType: s.mimeType,
		Data:     data,
	}
	s.recorder.Out(req)
	uploaded, err := s.library.Upload(ctx, req)
	if err != nil {
		return fmt.Errorf("upload media bytes: %w", err)
	}
	s.recorder.In(uploaded)

	if uploaded.UploadToken == "" {
		return media.ErrMissingUploadToken
	}

	items := media.NewMediaItems{{
		UploadToken: uploaded.UploadToken,
		FileName:    req.FileName,
	}}
	s.recorder.Out(items)
	created, err := s.library.BatchCreate(ctx, items)
	if err != nil {
		return fmt.Errorf("batch create media items: %w", err)
	}
	s.recorder.In(created)

	return nil
}
