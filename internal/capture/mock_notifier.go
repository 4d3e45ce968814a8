package capture

import (
	"context"
	"sync"
)

// MockNotifier is a test implementation of the service.Notifier interface.
// It records every delivery and can be told to fail, which the workflow must
// tolerate without aborting.
type MockNotifier struct {
	EchoErr  error
	ClearErr error

	echoes  []string
	cleared []string
	mu      sync.Mutex
}

// NewMockNotifier creates an empty mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// EchoTranscript implements service.Notifier.
func (m *MockNotifier) EchoTranscript(_ context.Context, _ int64, transcript string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.echoes = append(m.echoes, transcript)
	return m.EchoErr
}

// ClearActions implements service.Notifier.
func (m *MockNotifier) ClearActions(_ context.Context, _ int64, messageRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = append(m.cleared, messageRef)
	return m.ClearErr
}

// Echoes returns the transcripts echoed so far.
func (m *MockNotifier) Echoes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.echoes))
	copy(out, m.echoes)
	return out
}

// Cleared returns the message references whose actions were cleared.
func (m *MockNotifier) Cleared() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.cleared))
	copy(out, m.cleared)
	return out
}
