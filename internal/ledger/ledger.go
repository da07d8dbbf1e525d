// Package ledger holds the ordered transaction collection. Every change goes
// through a typed command that returns the resulting snapshot; the full
// snapshot is then written through to the key/value store and announced to
// subscribers.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	apperrors "kumbara/internal/errors"
	"kumbara/internal/events"
	"kumbara/internal/kvstore"
	"kumbara/internal/logger"
	"kumbara/internal/models"
	"kumbara/internal/uuid"
)

// EventKind names the command that produced an Event.
type EventKind string

const (
	EventAdded    EventKind = "added"
	EventUpdated  EventKind = "updated"
	EventDeleted  EventKind = "deleted"
	EventReplaced EventKind = "replaced"
	EventRevalued EventKind = "revalued"
	EventReset    EventKind = "reset"
)

// Event announces a ledger change.
type Event struct {
	Kind    EventKind `json:"kind"`
	IDs     []string  `json:"ids,omitempty"`
	Version uint64    `json:"version"`
}

// Snapshot is an immutable copy of the ledger. Version increases by one for
// every command that changed state.
type Snapshot struct {
	Transactions []models.Transaction
	Version      uint64
}

// Revaluation sets the current value of one investment.
type Revaluation struct {
	ID           string
	CurrentValue decimal.Decimal
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithIDGenerator overrides uuid.New for new transaction ids.
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) { l.newID = gen }
}

// Ledger is the transaction store.
type Ledger struct {
	writer *kvstore.SnapshotWriter
	store  kvstore.Store
	newID  func() string
	events *events.Broadcaster[Event]

	mu      sync.Mutex
	txns    []models.Transaction
	version uint64
}

// New creates an empty ledger persisting to store. Call Load to read the
// stored transactions.
func New(store kvstore.Store, opts ...Option) *Ledger {
	l := &Ledger{
		writer: kvstore.NewSnapshotWriter(store),
		store:  store,
		newID:  uuid.New,
		events: events.NewBroadcaster[Event](),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the stored transactions and installs them with the same
// normalization as Replace. It neither persists nor counts as a mutation.
// A missing key leaves the ledger empty.
func (l *Ledger) Load(ctx context.Context) error {
	var stored []models.Transaction
	err := kvstore.GetJSON(ctx, l.store, kvstore.KeyTransactions, &stored)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	l.mu.Lock()
	l.txns = l.normalizeAll(stored)
	sortTransactions(l.txns)
	l.mu.Unlock()

	logger.Get().Infow("ledger loaded", "transactions", len(stored))
	return nil
}

// Snapshot returns a copy of the current state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Version returns the number of state-changing commands applied so far.
func (l *Ledger) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// Get returns the transaction with the given id.
func (l *Ledger) Get(id string) (models.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexLocked(id); i >= 0 {
		return l.txns[i], true
	}
	return models.Transaction{}, false
}

// Subscribe registers for change events.
func (l *Ledger) Subscribe(buffer int) (<-chan Event, func()) {
	return l.events.Subscribe(buffer)
}

// Close closes every subscription.
func (l *Ledger) Close() {
	l.events.Close()
}

// Replace swaps the whole collection. Categories are matched against the
// casing already in the ledger before the incoming list's own first-seen
// casing.
func (l *Ledger) Replace(ctx context.Context, txns []models.Transaction) Snapshot {
	l.mu.Lock()
	l.txns = l.normalizeAll(txns)
	sortTransactions(l.txns)
	snap := l.commitLocked()
	l.mu.Unlock()

	l.afterCommit(ctx, snap, Event{Kind: EventReplaced})
	return snap
}

// Add inserts t and returns it as stored. An empty or already used id is
// replaced by a fresh one and a missing type is derived from the amount sign.
func (l *Ledger) Add(ctx context.Context, t models.Transaction) (models.Transaction, Snapshot) {
	l.mu.Lock()
	if t.ID == "" || l.indexLocked(t.ID) >= 0 {
		t.ID = l.newID()
	}
	t = l.normalize(t, l.casingLocked())
	l.txns = append(l.txns, t)
	sortTransactions(l.txns)
	snap := l.commitLocked()
	l.mu.Unlock()

	l.afterCommit(ctx, snap, Event{Kind: EventAdded, IDs: []string{t.ID}})
	return t, snap
}

// Update replaces the transaction with the same id. An unknown id leaves the
// ledger untouched and reports false.
func (l *Ledger) Update(ctx context.Context, t models.Transaction) (Snapshot, bool) {
	l.mu.Lock()
	i := l.indexLocked(t.ID)
	if i < 0 {
		snap := l.snapshotLocked()
		l.mu.Unlock()
		logger.Get().Warnw("ledger update ignored: unknown transaction", "id", t.ID)
		return snap, false
	}
	l.txns[i] = l.normalize(t, l.casingLocked())
	sortTransactions(l.txns)
	snap := l.commitLocked()
	l.mu.Unlock()

	l.afterCommit(ctx, snap, Event{Kind: EventUpdated, IDs: []string{t.ID}})
	return snap, true
}

// Delete removes the transaction with the given id. An unknown id leaves the
// ledger untouched and reports false.
func (l *Ledger) Delete(ctx context.Context, id string) (Snapshot, bool) {
	l.mu.Lock()
	i := l.indexLocked(id)
	if i < 0 {
		snap := l.snapshotLocked()
		l.mu.Unlock()
		logger.Get().Warnw("ledger delete ignored: unknown transaction", "id", id)
		return snap, false
	}
	l.txns = append(l.txns[:i], l.txns[i+1:]...)
	snap := l.commitLocked()
	l.mu.Unlock()

	l.afterCommit(ctx, snap, Event{Kind: EventDeleted, IDs: []string{id}})
	return snap, true
}

// Revalue applies new current values in one command. Entries whose value is
// unchanged or whose id is unknown are skipped; when nothing changes the
// ledger is not touched at all. It returns the number of changed entries.
func (l *Ledger) Revalue(ctx context.Context, updates []Revaluation) (Snapshot, int) {
	l.mu.Lock()
	var changed []string
	for _, u := range updates {
		i := l.indexLocked(u.ID)
		if i < 0 {
			logger.Get().Warnw("ledger revalue ignored: unknown transaction", "id", u.ID)
			continue
		}
		if l.txns[i].CurrentValue.Equal(u.CurrentValue) {
			continue
		}
		l.txns[i].CurrentValue = u.CurrentValue
		changed = append(changed, u.ID)
	}
	if len(changed) == 0 {
		snap := l.snapshotLocked()
		l.mu.Unlock()
		return snap, 0
	}
	snap := l.commitLocked()
	l.mu.Unlock()

	l.afterCommit(ctx, snap, Event{Kind: EventRevalued, IDs: changed})
	return snap, len(changed)
}

// Reset empties the ledger and removes the stored collection. Older pending
// writes are dropped; a mutation committed after the reset keeps its write.
// A failed removal leaves the ledger empty in memory.
func (l *Ledger) Reset(ctx context.Context) (Snapshot, error) {
	l.mu.Lock()
	l.txns = nil
	snap := l.commitLocked()
	l.writer.Invalidate(snap.Version, kvstore.KeyTransactions)
	l.mu.Unlock()

	err := l.writer.Remove(context.WithoutCancel(ctx), snap.Version, kvstore.KeyTransactions)
	l.events.Publish(Event{Kind: EventReset, Version: snap.Version})
	if err != nil {
		return snap, fmt.Errorf("removing %s: %w", kvstore.KeyTransactions, err)
	}
	return snap, nil
}

func (l *Ledger) commitLocked() Snapshot {
	l.version++
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() Snapshot {
	out := make([]models.Transaction, len(l.txns))
	copy(out, l.txns)
	return Snapshot{Transactions: out, Version: l.version}
}

func (l *Ledger) indexLocked(id string) int {
	for i := range l.txns {
		if l.txns[i].ID == id {
			return i
		}
	}
	return -1
}

// afterCommit persists the full snapshot and notifies subscribers. It runs
// outside the lock; the snapshot writer drops a write that arrives after a
// newer one.
func (l *Ledger) afterCommit(ctx context.Context, snap Snapshot, ev Event) {
	ctx = context.WithoutCancel(ctx)
	if _, err := l.writer.Write(ctx, kvstore.KeyTransactions, snap.Version, snap.Transactions); err != nil {
		logger.Get().Errorw("failed to persist transactions",
			"key", kvstore.KeyTransactions,
			"version", snap.Version,
			"error", apperrors.Wrap(apperrors.ErrPersistence, err),
		)
	}
	ev.Version = snap.Version
	l.events.Publish(ev)
}
