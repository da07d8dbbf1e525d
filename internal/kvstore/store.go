// Package kvstore is the durable key/value adapter behind the ledger and
// the price cache. Values are JSON documents stored under string keys.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Keys owned by the core.
const (
	KeyTransactions    = "@transactions"
	KeyGoldPrices      = "@goldPrices"
	KeyLastGoldUpdate  = "@lastGoldUpdate"
	KeyActiveFilter    = "activeFilter"
	KeyCustomDateRange = "customDateRange"
	KeyLastCustomRange = "lastCustomRange"
)

// CoreKeys lists every key the core writes.
var CoreKeys = []string{
	KeyTransactions,
	KeyGoldPrices,
	KeyLastGoldUpdate,
	KeyActiveFilter,
	KeyCustomDateRange,
	KeyLastCustomRange,
}

// ErrNotFound is returned by Get when the key has never been set or was removed.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a durable string key/value store. Overlapping writes to the same
// key resolve last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	GetAllKeys(ctx context.Context) ([]string, error)
	RemoveMany(ctx context.Context, keys []string) error
}

// GetJSON reads key and decodes it into v. It returns ErrNotFound unchanged.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}

// SnapshotWriter persists full-state snapshots tagged with a version and
// drops any snapshot older than one already written for the same key, so a
// slow write can never overwrite a newer state.
type SnapshotWriter struct {
	store Store

	mu      sync.Mutex
	written map[string]uint64
}

// NewSnapshotWriter creates a writer over s.
func NewSnapshotWriter(s Store) *SnapshotWriter {
	return &SnapshotWriter{store: s, written: make(map[string]uint64)}
}

// Write encodes v and stores it under key unless a snapshot with a newer
// version was already written. It reports whether the write happened.
func (w *SnapshotWriter) Write(ctx context.Context, key string, version uint64, v any) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.written[key]; ok && version < last {
		return false, nil
	}
	if err := SetJSON(ctx, w.store, key, v); err != nil {
		return false, err
	}
	w.written[key] = version
	return true, nil
}

// Remove deletes keys from the store and records version for them, so any
// older snapshot still in flight is dropped. A key that already holds a
// snapshot newer than version is left in place.
func (w *SnapshotWriter) Remove(ctx context.Context, version uint64, keys ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	remove := make([]string, 0, len(keys))
	for _, k := range keys {
		if w.written[k] > version {
			continue
		}
		w.written[k] = version
		remove = append(remove, k)
	}
	return w.store.RemoveMany(ctx, remove)
}

// Invalidate records version for keys without writing, so any older
// snapshot still in flight is dropped. Owners call it under their own lock
// before Remove.
func (w *SnapshotWriter) Invalidate(version uint64, keys ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, k := range keys {
		if version > w.written[k] {
			w.written[k] = version
		}
	}
}
