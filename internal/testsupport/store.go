package testsupport

import (
	"testing"

	"kai/internal/config"
	"kai/internal/logging"
	"kai/internal/outbox"
)

// MustOpenStore opens an outbox.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *outbox.Store {
	t.Helper()

	store, err := outbox.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("outbox.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
