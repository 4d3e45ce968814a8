package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/avoronov/snapledger/internal/common"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// openAIClient implements the Extractor interface for the OpenAI API.
type openAIClient struct {
	httpClient         *http.Client
	apiKey             string
	model              string
	transcriptionModel string
	baseURL            string
	temperature        float64
	maxTokens          int
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	transcriptionModel := cfg.TranscriptionModel
	if transcriptionModel == "" {
		transcriptionModel = "whisper-1"
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	return &openAIClient{
		apiKey:             cfg.APIKey,
		model:              model,
		transcriptionModel: transcriptionModel,
		baseURL:            baseURL,
		temperature:        temperature,
		maxTokens:          maxTokens,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// ExtractFromText asks the model to structure a free-text purchase description.
func (c *openAIClient) ExtractFromText(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, []map[string]any{
		{"role": "system", "content": receiptSystemPrompt()},
		{"role": "user", "content": extractFromTextPrompt(text)},
	})
}

// ExtractFromImage sends the receipt photo as an inline data URL.
func (c *openAIClient) ExtractFromImage(ctx context.Context, image []byte, caption string) (string, error) {
	mimeType := http.DetectContentType(image)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	return c.complete(ctx, []map[string]any{
		{"role": "system", "content": receiptSystemPrompt()},
		{
			"role": "user",
			"content": []map[string]any{
				{"type": "text", "text": extractFromImagePrompt(caption)},
				{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
			},
		},
	})
}

// ApplyComment revises an earlier extraction with a user correction.
func (c *openAIClient) ApplyComment(ctx context.Context, originalJSON, comment string) (string, error) {
	return c.complete(ctx, []map[string]any{
		{"role": "system", "content": receiptSystemPrompt()},
		{"role": "user", "content": applyCommentPrompt(originalJSON, comment)},
	})
}

// TranscribeVoice runs the audio transcription endpoint.
func (c *openAIClient) TranscribeVoice(ctx context.Context, audio []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "voice.ogg")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err = part.Write(audio); err != nil {
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	if err = writer.WriteField("model", c.transcriptionModel); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	respBody, err := c.do(req)
	if err != nil {
		return "", err
	}

	var response struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", common.MalformedOutputf("transcription response: %v", err)
	}
	return strings.TrimSpace(response.Text), nil
}

// complete runs a chat completion and returns the first choice's content.
func (c *openAIClient) complete(ctx context.Context, messages []map[string]any) (string, error) {
	requestBody := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	respBody, err := c.do(req)
	if err != nil {
		return "", err
	}

	var response openAIResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", common.MalformedOutputf("completion response: %v", err)
	}
	if len(response.Choices) == 0 {
		return "", common.MalformedOutputf("no completion choices returned")
	}

	return response.Choices[0].Message.Content, nil
}

func (c *openAIClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, common.ServiceFailure("openai request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.ServiceFailure("openai response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, common.ServiceFailure("openai",
			fmt.Errorf("status %d: %s", resp.StatusCode, truncateForLog(body)))
	}
	return body, nil
}

// truncateForLog keeps error bodies short enough for structured logs.
func truncateForLog(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

// openAIResponse represents the chat completions response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}
