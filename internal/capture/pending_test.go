package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/snapledger/internal/model"
)

func TestMemoryPendingStore_StageOverwrites(t *testing.T) {
	store := NewMemoryPendingStore()

	first := store.Stage(1, &model.Receipt{Merchant: "Tesco", UserID: 1}, `{"a":1}`)
	second := store.Stage(1, &model.Receipt{Merchant: "Lidl", UserID: 1}, `{"a":2}`)

	assert.NotEqual(t, first.Token, second.Token, "every stage must issue a fresh token")

	entry, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Lidl", entry.Candidate.Merchant)
	assert.Equal(t, second.Token, entry.Token)
	assert.Equal(t, `{"a":2}`, entry.OriginalJSON)
}

func TestMemoryPendingStore_PerUserIsolation(t *testing.T) {
	store := NewMemoryPendingStore()

	store.Stage(1, &model.Receipt{Merchant: "Tesco", UserID: 1}, `{}`)
	store.Stage(2, &model.Receipt{Merchant: "Lidl", UserID: 2}, `{}`)

	e1, ok := store.Get(1)
	require.True(t, ok)
	e2, ok := store.Get(2)
	require.True(t, ok)

	assert.Equal(t, "Tesco", e1.Candidate.Merchant)
	assert.Equal(t, "Lidl", e2.Candidate.Merchant)

	store.Clear(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
	_, ok = store.Get(2)
	assert.True(t, ok)
}

func TestMemoryPendingStore_GetMissing(t *testing.T) {
	store := NewMemoryPendingStore()
	_, ok := store.Get(42)
	assert.False(t, ok)

	// Clearing a missing entry is a no-op.
	store.Clear(42)
}

func TestMemoryPendingStore_SetPreviewMessage(t *testing.T) {
	store := NewMemoryPendingStore()

	entry := store.Stage(1, &model.Receipt{UserID: 1}, `{}`)

	assert.True(t, store.SetPreviewMessage(1, entry.Token, "msg-10"))
	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "msg-10", got.PreviewMessageRef)

	// A stale token must not attach to the newer entry.
	newer := store.Stage(1, &model.Receipt{UserID: 1}, `{}`)
	assert.False(t, store.SetPreviewMessage(1, entry.Token, "msg-11"))
	got, ok = store.Get(1)
	require.True(t, ok)
	assert.Empty(t, got.PreviewMessageRef)

	assert.True(t, store.SetPreviewMessage(1, newer.Token, "msg-12"))

	assert.False(t, store.SetPreviewMessage(99, newer.Token, "msg-13"), "unknown user")
}
