package ai

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// rateLimiter is a token bucket refilled lazily on acquisition.
type rateLimiter struct {
	lastRefill time.Time
	tokens     float64
	capacity   float64
	perSecond  float64
	mu         sync.Mutex
}

func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &rateLimiter{
		tokens:     float64(requestsPerMinute),
		capacity:   float64(requestsPerMinute),
		perSecond:  float64(requestsPerMinute) / 60.0,
		lastRefill: time.Now(),
	}
}

// wait blocks until a token is available or the context is canceled.
func (rl *rateLimiter) wait(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if rl.tryAcquire() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (rl *rateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.tokens += now.Sub(rl.lastRefill).Seconds() * rl.perSecond
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// rateLimitedExtractor wraps an Extractor with client-side rate limiting.
type rateLimitedExtractor struct {
	inner   Extractor
	limiter *rateLimiter
}

func newRateLimitedExtractor(inner Extractor, requestsPerMinute int) Extractor {
	return &rateLimitedExtractor{
		inner:   inner,
		limiter: newRateLimiter(requestsPerMinute),
	}
}

func (r *rateLimitedExtractor) ExtractFromImage(ctx context.Context, image []byte, caption string) (string, error) {
	if err := r.limiter.wait(ctx); err != nil {
		return "", err
	}
	return r.inner.ExtractFromImage(ctx, image, caption)
}

func (r *rateLimitedExtractor) TranscribeVoice(ctx context.Context, audio []byte) (string, error) {
	if err := r.limiter.wait(ctx); err != nil {
		return "", err
	}
	return r.inner.TranscribeVoice(ctx, audio)
}

func (r *rateLimitedExtractor) ExtractFromText(ctx context.Context, text string) (string, error) {
	if err := r.limiter.wait(ctx); err != nil {
		return "", err
	}
	return r.inner.ExtractFromText(ctx, text)
}

func (r *rateLimitedExtractor) ApplyComment(ctx context.Context, originalJSON, comment string) (string, error) {
	if err := r.limiter.wait(ctx); err != nil {
		return "", err
	}
	return r.inner.ApplyComment(ctx, originalJSON, comment)
}
