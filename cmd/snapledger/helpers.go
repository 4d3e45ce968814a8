package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/avoronov/snapledger/internal/ai"
	"github.com/avoronov/snapledger/internal/config"
	"github.com/avoronov/snapledger/internal/storage"
)

const defaultDBPath = "~/.local/share/snapledger/snapledger.db"

func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	path := viper.GetString("database.path")
	if path == "" {
		path = defaultDBPath
	}

	store, err := storage.NewSQLiteStorage(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate storage: %w", err)
	}
	return store, nil
}

func newExtractor() (ai.Extractor, error) {
	apiKey := viper.GetString("ai.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	return ai.NewExtractor(ai.Config{
		Provider:           viper.GetString("ai.provider"),
		APIKey:             apiKey,
		Model:              viper.GetString("ai.model"),
		TranscriptionModel: viper.GetString("ai.transcription_model"),
		Temperature:        viper.GetFloat64("ai.temperature"),
		MaxTokens:          viper.GetInt("ai.max_tokens"),
		RequestsPerMinute:  viper.GetInt("ai.requests_per_minute"),
	})
}

func currentUserID() int64 {
	if id := viper.GetInt64("user_id"); id > 0 {
		return id
	}
	return 1
}

// consoleNotifier implements service.Notifier for the local session: the
// transcript echo goes to the terminal, and there are no rendered buttons to
// clear in a scrollback.
type consoleNotifier struct {
	out io.Writer
}

func newConsoleNotifier(out io.Writer) *consoleNotifier {
	return &consoleNotifier{out: out}
}

func (n *consoleNotifier) EchoTranscript(_ context.Context, _ int64, transcript string) error {
	_, err := fmt.Fprintf(n.out, "I heard: %q\n", transcript)
	return err
}

func (n *consoleNotifier) ClearActions(_ context.Context, _ int64, _ string) error {
	return nil
}
