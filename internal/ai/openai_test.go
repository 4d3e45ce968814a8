package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/snapledger/internal/common"
)

func TestNewOpenAIClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid config",
			config: Config{APIKey: "test-key"},
		},
		{
			name:    "missing API key",
			config:  Config{},
			wantErr: true,
		},
		{
			name: "custom model and settings",
			config: Config{
				APIKey:      "test-key",
				Model:       "gpt-4o",
				Temperature: 0.5,
				MaxTokens:   500,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newOpenAIClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func completionResponse(content string) map[string]any {
	return map[string]any{
		"id": "chatcmpl-test",
		"choices": []map[string]any{
			{
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (Extractor, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return client, server
}

func TestOpenAIClient_ExtractFromText(t *testing.T) {
	const receiptJSON = `{"merchant":"Tesco","category":"food","total_amount":12.5}`

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		messages := body["messages"].([]any)
		require.Len(t, messages, 2)
		user := messages[1].(map[string]any)
		assert.Contains(t, user["content"], "Lunch at Tesco")

		_ = json.NewEncoder(w).Encode(completionResponse(receiptJSON))
	})

	raw, err := client.ExtractFromText(context.Background(), "Lunch at Tesco for 12.50 EUR")
	require.NoError(t, err)
	assert.Equal(t, receiptJSON, raw)
}

func TestOpenAIClient_ApplyCommentCarriesOriginal(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		user := body["messages"].([]any)[1].(map[string]any)
		content := user["content"].(string)
		assert.Contains(t, content, `"merchant":"Tesco"`)
		assert.Contains(t, content, "change total to 15")

		_ = json.NewEncoder(w).Encode(completionResponse(`{"merchant":"Tesco","total_amount":15}`))
	})

	raw, err := client.ApplyComment(context.Background(), `{"merchant":"Tesco","total_amount":12.5}`, "change total to 15")
	require.NoError(t, err)
	assert.Contains(t, raw, "15")
}

func TestOpenAIClient_ExtractFromImageEncodesDataURL(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		user := body["messages"].([]any)[1].(map[string]any)
		parts := user["content"].([]any)
		require.Len(t, parts, 2)

		imagePart := parts[1].(map[string]any)
		url := imagePart["image_url"].(map[string]any)["url"].(string)
		assert.Contains(t, url, "data:")
		assert.Contains(t, url, ";base64,")

		_ = json.NewEncoder(w).Encode(completionResponse(`{}`))
	})

	_, err := client.ExtractFromImage(context.Background(), []byte{0xff, 0xd8, 0xff, 0xe0}, "dinner")
	require.NoError(t, err)
}

func TestOpenAIClient_TranscribeVoice(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		_ = json.NewEncoder(w).Encode(map[string]any{"text": " Lunch at Tesco "})
	})

	text, err := client.TranscribeVoice(context.Background(), []byte("opus"))
	require.NoError(t, err)
	assert.Equal(t, "Lunch at Tesco", text)
}

func TestOpenAIClient_ServerErrorIsServiceFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	})

	_, err := client.ExtractFromText(context.Background(), "Lunch")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
}

func TestOpenAIClient_NoChoicesIsMalformed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "x", "choices": []any{}})
	})

	_, err := client.ExtractFromText(context.Background(), "Lunch")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMalformedOutput)
}

func TestOpenAIClient_CancellationIsDistinct(t *testing.T) {
	started := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client going away;
		// otherwise Close blocks on this connection forever.
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.ExtractFromText(ctx, "Lunch")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOperationCancelled)
}

func TestNewExtractor(t *testing.T) {
	t.Run("defaults to openai", func(t *testing.T) {
		client, err := NewExtractor(Config{APIKey: "k"})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("rate limited wrapper", func(t *testing.T) {
		client, err := NewExtractor(Config{APIKey: "k", RequestsPerMinute: 10})
		require.NoError(t, err)
		_, ok := client.(*rateLimitedExtractor)
		assert.True(t, ok)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewExtractor(Config{Provider: "carrier-pigeon", APIKey: "k"})
		assert.Error(t, err)
	})
}
