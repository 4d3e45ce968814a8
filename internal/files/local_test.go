package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/snapledger/internal/common"
)

// Minimal valid PNG header followed by padding; enough for content sniffing.
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 64)...)

func TestLocalFetcher_Fetch(t *testing.T) {
	fetcher := NewLocalFetcher()

	path := filepath.Join(t.TempDir(), "receipt.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0600))

	data, err := fetcher.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	_, err = fetcher.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
}

func TestLocalFetcher_Validate(t *testing.T) {
	fetcher := NewLocalFetcher()

	tests := []struct {
		name     string
		data     []byte
		allowed  []string
		maxSize  int64
		wantMime string
		wantErr  bool
	}{
		{
			name:     "png accepted",
			data:     pngBytes,
			allowed:  []string{"image/jpeg", "image/png"},
			maxSize:  1024,
			wantMime: "image/png",
		},
		{
			name:    "type not in allow-list",
			data:    pngBytes,
			allowed: []string{"image/jpeg"},
			maxSize: 1024,
			wantErr: true,
		},
		{
			name:    "too large",
			data:    pngBytes,
			allowed: []string{"image/png"},
			maxSize: 8,
			wantErr: true,
		},
		{
			name:    "empty file",
			data:    nil,
			allowed: []string{"image/png"},
			maxSize: 1024,
			wantErr: true,
		},
		{
			name:     "sniffed parameters stripped",
			data:     []byte("hello receipts, this is plain text padding for the sniffer"),
			allowed:  []string{"text/plain"},
			maxSize:  1024,
			wantMime: "text/plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, err := fetcher.Validate(tt.data, tt.allowed, tt.maxSize)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMime, mime)
		})
	}
}
