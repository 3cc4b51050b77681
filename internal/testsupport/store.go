package testsupport

import (
	"context"
	"testing"

	"subnode/internal/config"
	"subnode/internal/history"
)

// MustOpenHistory opens the job ledger named by cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustGetRecord loads the ledger row for id.
func MustGetRecord(t testing.TB, store *history.Store, id string) *history.Record {
	t.Helper()

	record, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("store.Get(%s): %v", id, err)
	}
	return record
}
