package ai

import (
	"fmt"
	"strings"
)

// NewExtractor creates an extraction client based on the provided
// configuration, wrapping it with rate limiting when configured.
func NewExtractor(cfg Config) (Extractor, error) {
	var (
		client Extractor
		err    error
	)

	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		client, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported extraction provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RequestsPerMinute > 0 {
		client = newRateLimitedExtractor(client, cfg.RequestsPerMinute)
	}
	return client, nil
}
