package testsupport

import (
	"context"
	"testing"

	"opacsplice/internal/oraclecache"
)

// MustOpenCache opens an oraclecache.Store for tests and registers cleanup.
func MustOpenCache(t testing.TB, path string) *oraclecache.Store {
	t.Helper()

	store, err := oraclecache.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("oraclecache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
