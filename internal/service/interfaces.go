// Package service defines the shared contracts between the capture workflow
// and its collaborators: persistence, file retrieval and user notification.
package service

import (
	"context"
	"time"

	"github.com/avoronov/snapledger/internal/model"
)

// ReceiptStore is the durable persistence gateway for confirmed receipts.
type ReceiptStore interface {
	// SaveReceipt durably stores a confirmed receipt and returns its identifier.
	SaveReceipt(ctx context.Context, receipt *model.Receipt) (int64, error)
	// GetReceipt loads a receipt owned by userID.
	GetReceipt(ctx context.Context, id, userID int64) (*model.Receipt, error)
	// DeleteReceipt removes a receipt owned by userID.
	DeleteReceipt(ctx context.Context, id, userID int64) error
	// ListReceipts returns the newest receipts for a user, most recent first.
	ListReceipts(ctx context.Context, userID int64, limit int) ([]model.Receipt, error)
	// SearchReceipts returns a user's receipts whose merchant matches the query.
	SearchReceipts(ctx context.Context, userID int64, merchantQuery string) ([]model.Receipt, error)
	// SummaryByCategory aggregates a user's net amounts per category.
	SummaryByCategory(ctx context.Context, userID int64) ([]CategorySummary, error)
}

// CategorySummary is one row of a per-category aggregation. Net applies
// income/expense sign semantics.
type CategorySummary struct {
	Category string
	Net      float64
	Count    int
}

// FileFetcher retrieves and validates user-supplied files (images, voice notes).
type FileFetcher interface {
	// Fetch resolves a file reference to its bytes.
	Fetch(ctx context.Context, ref string) ([]byte, error)
	// Validate checks data against an allow-list of MIME types and a size
	// cap, returning the detected MIME type.
	Validate(data []byte, allowedTypes []string, maxSize int64) (string, error)
}

// Notifier delivers best-effort side-channel messages to the user. Failures
// are logged by callers, never propagated: no transition depends on a
// notification being delivered.
type Notifier interface {
	// EchoTranscript shows the user what their voice note transcribed to.
	EchoTranscript(ctx context.Context, userID int64, transcript string) error
	// ClearActions disables the approve/reject actions on a superseded preview.
	ClearActions(ctx context.Context, userID int64, messageRef string) error
}

// RetryOptions configures retry behavior for gateway operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
