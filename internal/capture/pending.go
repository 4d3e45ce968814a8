package capture

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/snapledger/internal/model"
)

// Entry is the per-user transient record holding the candidate receipt, the
// validated JSON it was derived from, its staleness token and the preview
// message the transport last rendered for it.
type Entry struct {
	StagedAt          time.Time
	Candidate         *model.Receipt
	OriginalJSON      string
	Token             string
	PreviewMessageRef string
}

// PendingStore stages at most one unconfirmed candidate per user. Stage
// always overwrites and issues a fresh token; uniqueness per staged candidate
// is the only token contract.
type PendingStore interface {
	Stage(userID int64, candidate *model.Receipt, originalJSON string) Entry
	Get(userID int64) (Entry, bool)
	Clear(userID int64)
	// SetPreviewMessage records the transport's preview message reference on
	// the current entry. It is ignored when token no longer matches.
	SetPreviewMessage(userID int64, token, messageRef string) bool
}

// MemoryPendingStore is the process-local PendingStore. Entries do not
// survive a restart; nothing durable was promised before approval.
type MemoryPendingStore struct {
	entries map[int64]*Entry
	mu      sync.Mutex
}

// NewMemoryPendingStore creates an empty in-memory pending store.
func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{entries: make(map[int64]*Entry)}
}

// Stage replaces any existing entry for the user with a fresh one.
func (s *MemoryPendingStore) Stage(userID int64, candidate *model.Receipt, originalJSON string) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &Entry{
		StagedAt:     time.Now(),
		Candidate:    candidate,
		OriginalJSON: originalJSON,
		Token:        uuid.NewString(),
	}
	s.entries[userID] = entry
	return *entry
}

// Get returns a copy of the user's current entry.
func (s *MemoryPendingStore) Get(userID int64) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Clear removes the user's entry, if any.
func (s *MemoryPendingStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// SetPreviewMessage attaches a message reference to the current entry.
func (s *MemoryPendingStore) SetPreviewMessage(userID int64, token, messageRef string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok || entry.Token != token {
		return false
	}
	entry.PreviewMessageRef = messageRef
	return true
}
