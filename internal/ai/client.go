// Package ai wraps external receipt-understanding services behind a narrow
// extraction interface. The gateway returns raw extraction strings; shaping
// them into domain data belongs to the sanitize and parse packages.
package ai

import (
	"context"
)

// Extractor defines the contract for receipt extraction providers.
type Extractor interface {
	// ExtractFromImage turns a receipt photo (plus an optional user caption)
	// into a raw extraction string.
	ExtractFromImage(ctx context.Context, image []byte, caption string) (string, error)
	// TranscribeVoice turns a voice note into text.
	TranscribeVoice(ctx context.Context, audio []byte) (string, error)
	// ExtractFromText turns a free-text purchase description into a raw
	// extraction string.
	ExtractFromText(ctx context.Context, text string) (string, error)
	// ApplyComment revises an earlier extraction: it takes the JSON the
	// current candidate was derived from plus a user comment and returns an
	// updated raw extraction string.
	ApplyComment(ctx context.Context, originalJSON, comment string) (string, error)
}

// Config holds provider settings.
type Config struct {
	Provider           string
	APIKey             string
	Model              string
	TranscriptionModel string
	BaseURL            string // override for tests; empty means the provider default
	Temperature        float64
	MaxTokens          int
	RequestsPerMinute  int // 0 disables client-side rate limiting
}
