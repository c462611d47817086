package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/support-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func sampleEntries() []core.HistoryEntry {
	label := "RESEND_TICKET"
	return []core.HistoryEntry{
		{
			TicketID: 1,
			Ticket: core.TicketSnapshot{
				TicketID: 1, CustomerEmail: "test1@example.com", Status: "open",
				Subject: "Test subject 1", Description: "Test description 1", Classification: &label,
			},
			ModelOutput: core.NewTextCompletion("cmpl-1", "llama", " RESEND_TICKET", "stop"),
			Outcome:     core.OutcomeReplied,
			MacroID:     8140353174289,
		},
		{
			TicketID: 2,
			Ticket:   core.TicketSnapshot{TicketID: 2, Status: "open", Subject: "s", Description: "d"},
			Outcome:  core.OutcomeFailed,
			Error:    "model unavailable",
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	store := NewFileStore(path, zaptest.NewLogger(t))

	entries := sampleEntries()
	require.NoError(t, store.Save(context.Background(), "run-1", entries))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, entries, loaded)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileStoreOverwritesAndWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := NewFileStore(path, zaptest.NewLogger(t))

	require.NoError(t, store.Save(context.Background(), "run-1", sampleEntries()))
	require.NoError(t, store.Save(context.Background(), "run-2", nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFileStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "history.json")
	err := NewFileStore(path, zaptest.NewLogger(t)).Save(ctx, "run", sampleEntries())

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, path)
}

func TestSQLiteStoreSaveAndCleanup(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"), zaptest.NewLogger(t), time.Hour, 0)
	require.NoError(t, err)
	t.Cleanup(store.Stop)

	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base }
	require.NoError(t, store.Save(ctx, "old-run", sampleEntries()))

	store.now = func() time.Time { return base.Add(90 * time.Minute) }
	require.NoError(t, store.Save(ctx, "new-run", sampleEntries()[:1]))

	entries, err := store.Run(ctx, "old-run")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, core.OutcomeReplied, entries[0].Outcome)
	assert.Equal(t, int64(8140353174289), entries[0].MacroID)

	require.NoError(t, store.Cleanup(ctx))

	entries, err = store.Run(ctx, "old-run")
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = store.Run(ctx, "new-run")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMemoryStoreEvictsOldestRun(t *testing.T) {
	store := NewMemoryStore(zaptest.NewLogger(t), 2)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, id, sampleEntries()))
	}

	assert.Equal(t, []string{"b", "c"}, store.RunIDs())
	_, err := store.Run(ctx, "a")
	assert.ErrorIs(t, err, ErrRunNotFound)

	entries, err := store.Run(ctx, "c")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

type failingStore struct{}

func (failingStore) Save(context.Context, string, []core.HistoryEntry) error {
	return errors.New("disk full")
}

func TestMultiStoreWritesAllSinks(t *testing.T) {
	logger := zaptest.NewLogger(t)
	memory := NewMemoryStore(logger, 0)
	multi := NewMultiStore(logger,
		NamedStore{Name: "broken", Store: failingStore{}},
		NamedStore{Name: "memory", Store: memory},
	)

	err := multi.Save(context.Background(), "run-1", sampleEntries())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink broken: disk full")
	assert.Equal(t, []string{"run-1"}, memory.RunIDs())
	assert.Equal(t, []string{"broken", "memory"}, multi.Sinks())
}

func TestSQLiteStoreStopTwice(t *testing.T) {
	logger := zaptest.NewLogger(t)
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"), logger, time.Hour, time.Hour)
	require.NoError(t, err)

	multi := NewMultiStore(logger, NamedStore{Name: "sqlite", Store: store})

	assert.NotPanics(t, func() {
		multi.Stop()
		store.Stop()
	})
}
