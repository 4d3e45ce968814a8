// Package files provides the file retrieval and validation capability the
// capture workflow consumes. The local implementation resolves references as
// filesystem paths; a chat transport would substitute its own download-backed
// implementation.
package files

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/avoronov/snapledger/internal/common"
)

// LocalFetcher reads file references from the local filesystem.
type LocalFetcher struct{}

// NewLocalFetcher creates a filesystem-backed fetcher.
func NewLocalFetcher() *LocalFetcher {
	return &LocalFetcher{}
}

// Fetch implements service.FileFetcher.
func (f *LocalFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.ServiceFailure("fetch file", err)
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, common.ServiceFailure("fetch file", err)
	}
	return data, nil
}

// Validate implements service.FileFetcher. The MIME type is sniffed from the
// content; extensions are not trusted.
func (f *LocalFetcher) Validate(data []byte, allowedTypes []string, maxSize int64) (string, error) {
	if len(data) == 0 {
		return "", common.Validationf("file is empty")
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", common.Validationf("file too large (%d bytes, limit %d)", len(data), maxSize)
	}

	mimeType := http.DetectContentType(data)
	// DetectContentType may append parameters, e.g. "text/plain; charset=utf-8".
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	for _, allowed := range allowedTypes {
		if strings.EqualFold(mimeType, allowed) {
			return mimeType, nil
		}
	}
	return "", common.Validationf("invalid file type %q", mimeType)
}
