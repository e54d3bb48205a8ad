package filesystem

import (
	"fmt"
	"io"
	"os"

	"github.com/ylexus/google-issue-193814298/domain/media"
)

// Reader implements media.FileReader using the os package
type Reader struct{}

// NewReader creates a new filesystem reader
func NewReader() *Reader {
	return &Reader{}
}

// ReadFile opens path read-only, reads it fully and closes it
func (r *Reader) ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open media file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("unable to read media file: %w", err)
	}
	return data, nil
}

// Exists returns true if the file exists
func (r *Reader) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Ensure Reader implements media.FileReader
var _ media.FileReader = (*Reader)(nil)
