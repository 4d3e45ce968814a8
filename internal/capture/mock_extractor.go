package capture

import (
	"context"
	"sync"
)

// MockExtractor is a test implementation of the ai.Extractor interface.
// Each method delegates to an optional function field and falls back to a
// canned response; every invocation is recorded.
type MockExtractor struct {
	ExtractFromImageFn func(ctx context.Context, image []byte, caption string) (string, error)
	TranscribeVoiceFn  func(ctx context.Context, audio []byte) (string, error)
	ExtractFromTextFn  func(ctx context.Context, text string) (string, error)
	ApplyCommentFn     func(ctx context.Context, originalJSON, comment string) (string, error)

	calls []MockExtractorCall
	mu    sync.Mutex
}

// MockExtractorCall records a single extractor invocation.
type MockExtractorCall struct {
	Method       string
	Text         string
	Caption      string
	OriginalJSON string
	Comment      string
}

const mockReceiptJSON = `{"merchant":"Mock Shop","category":"other","total_amount":1.00,"positions":[]}`

// NewMockExtractor creates a mock whose methods return mockReceiptJSON and a
// canned transcript until configured otherwise.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// ExtractFromImage implements ai.Extractor.
func (m *MockExtractor) ExtractFromImage(ctx context.Context, image []byte, caption string) (string, error) {
	m.record(MockExtractorCall{Method: "ExtractFromImage", Caption: caption})
	if m.ExtractFromImageFn != nil {
		return m.ExtractFromImageFn(ctx, image, caption)
	}
	return mockReceiptJSON, nil
}

// TranscribeVoice implements ai.Extractor.
func (m *MockExtractor) TranscribeVoice(ctx context.Context, audio []byte) (string, error) {
	m.record(MockExtractorCall{Method: "TranscribeVoice"})
	if m.TranscribeVoiceFn != nil {
		return m.TranscribeVoiceFn(ctx, audio)
	}
	return "mock transcript", nil
}

// ExtractFromText implements ai.Extractor.
func (m *MockExtractor) ExtractFromText(ctx context.Context, text string) (string, error) {
	m.record(MockExtractorCall{Method: "ExtractFromText", Text: text})
	if m.ExtractFromTextFn != nil {
		return m.ExtractFromTextFn(ctx, text)
	}
	return mockReceiptJSON, nil
}

// ApplyComment implements ai.Extractor.
func (m *MockExtractor) ApplyComment(ctx context.Context, originalJSON, comment string) (string, error) {
	m.record(MockExtractorCall{Method: "ApplyComment", OriginalJSON: originalJSON, Comment: comment})
	if m.ApplyCommentFn != nil {
		return m.ApplyCommentFn(ctx, originalJSON, comment)
	}
	return originalJSON, nil
}

// Calls returns a snapshot of all recorded invocations.
func (m *MockExtractor) Calls() []MockExtractorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockExtractorCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockExtractor) record(call MockExtractorCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}
