package capture

import (
	"context"
	"fmt"

	"github.com/avoronov/snapledger/internal/common"
)

// MockFileFetcher is a test implementation of the service.FileFetcher
// interface backed by an in-memory map of file references.
type MockFileFetcher struct {
	Files       map[string][]byte
	FetchErr    error
	ValidateErr error
}

// NewMockFileFetcher creates a fetcher with the given reference->bytes map.
func NewMockFileFetcher(files map[string][]byte) *MockFileFetcher {
	if files == nil {
		files = make(map[string][]byte)
	}
	return &MockFileFetcher{Files: files}
}

// Fetch implements service.FileFetcher.
func (m *MockFileFetcher) Fetch(_ context.Context, ref string) ([]byte, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	data, ok := m.Files[ref]
	if !ok {
		return nil, common.ServiceFailure("fetch file", fmt.Errorf("unknown reference %q", ref))
	}
	return data, nil
}

// Validate implements service.FileFetcher.
func (m *MockFileFetcher) Validate(data []byte, _ []string, maxSize int64) (string, error) {
	if m.ValidateErr != nil {
		return "", m.ValidateErr
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", common.Validationf("file too large")
	}
	return "application/octet-stream", nil
}
