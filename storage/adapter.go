package storage

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrEthical07/goCognito/internal/settle"
)

// ErrAdapterClosed is returned by Flush after Close.
var ErrAdapterClosed = errors.New("storage adapter closed")

const defaultWriteTimeout = 5 * time.Second

// Adapter serves one store key namespace synchronously from memory and persists it
// asynchronously. It is safe for concurrent use.
type Adapter struct {
	store        KeyValueStore
	storeKey     string
	logger       *slog.Logger
	writeTimeout time.Duration

	mu        sync.Mutex
	items     map[string]string
	version   uint64
	persisted uint64
	waiters   []flushWaiter
	closed    bool

	kick    chan struct{}
	stop    chan struct{}
	stopped chan struct{}

	synced atomic.Bool
	group  singleflight.Group
}

type flushWaiter struct {
	version uint64
	done    *settle.Once[struct{}]
}

// NewAdapter starts an adapter for storeKey over store. Call Close to stop its writer.
func NewAdapter(store KeyValueStore, storeKey string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{
		store:        store,
		storeKey:     storeKey,
		logger:       logger.With("store_key", storeKey),
		writeTimeout: defaultWriteTimeout,
		items:        make(map[string]string),
		kick:         make(chan struct{}, 1),
		stop:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	go a.run()
	return a
}

// StoreKey returns the namespace served by a.
func (a *Adapter) StoreKey() string {
	return a.storeKey
}

// GetItem returns the in-memory value of key.
func (a *Adapter) GetItem(key string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.items[key]
	return v, ok
}

// SetItem stores value under key and schedules persistence.
func (a *Adapter) SetItem(key, value string) {
	a.mu.Lock()
	a.items[key] = value
	a.markDirtyLocked()
	a.mu.Unlock()
}

// RemoveItem deletes key and schedules persistence, even when key was absent.
func (a *Adapter) RemoveItem(key string) {
	a.mu.Lock()
	delete(a.items, key)
	a.markDirtyLocked()
	a.mu.Unlock()
}

// Clear empties the namespace and schedules persistence.
func (a *Adapter) Clear() {
	a.mu.Lock()
	a.items = make(map[string]string)
	a.markDirtyLocked()
	a.mu.Unlock()
}

// Len reports the number of in-memory items.
func (a *Adapter) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// Synced reports whether at least one Sync completed.
func (a *Adapter) Synced() bool {
	return a.synced.Load()
}

func (a *Adapter) markDirtyLocked() {
	a.version++
	if a.closed {
		return
	}
	select {
	case a.kick <- struct{}{}:
	default:
	}
}

// Sync replaces memory with the persisted namespace. Writes queued before the call are
// flushed first. Store failures are logged and leave an empty namespace; Sync never fails.
// When ctx ends before the queued writes are flushed or the fetch returns, memory is
// kept as is and the writer still persists the latest snapshot. Concurrent calls share
// one fetch.
func (a *Adapter) Sync(ctx context.Context) {
	_, _, _ = a.group.Do(a.storeKey, func() (any, error) {
		if err := a.Flush(ctx); err != nil && !errors.Is(err, ErrAdapterClosed) {
			a.logger.Warn("storage flush before sync incomplete, keeping memory", "error", err)
			return nil, nil
		}

		a.mu.Lock()
		base := a.version
		a.mu.Unlock()

		fetched, err := a.store.Fetch(ctx, a.storeKey)
		if err != nil {
			if ctx.Err() != nil {
				a.logger.Warn("storage sync abandoned, keeping memory", "error", err)
				return nil, nil
			}
			a.logger.Warn("storage sync failed, using empty namespace", "error", err)
			fetched = nil
		}
		next := make(map[string]string, len(fetched))
		maps.Copy(next, fetched)

		a.mu.Lock()
		if a.version != base {
			// Mutated while fetching; memory is newer than what was read.
			a.mu.Unlock()
			a.logger.Debug("storage changed during sync, keeping memory")
			return nil, nil
		}
		a.items = next
		a.mu.Unlock()

		a.synced.Store(true)
		a.logger.Debug("storage synced", "items", len(next))
		return nil, nil
	})
}

// Flush waits until every mutation made before the call has been written (or its write
// attempted and logged).
func (a *Adapter) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.persisted >= a.version {
		a.mu.Unlock()
		return nil
	}
	if a.closed {
		a.mu.Unlock()
		return ErrAdapterClosed
	}
	w := flushWaiter{version: a.version, done: settle.New[struct{}]()}
	a.waiters = append(a.waiters, w)
	a.mu.Unlock()

	select {
	case a.kick <- struct{}{}:
	default:
	}

	_, err := w.done.Wait(ctx)
	return err
}

// Close flushes pending writes and stops the writer. Close is idempotent.
func (a *Adapter) Close(ctx context.Context) error {
	flushErr := a.Flush(ctx)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	close(a.stop)
	select {
	case <-a.stopped:
	case <-ctx.Done():
		return ctx.Err()
	}
	if errors.Is(flushErr, ErrAdapterClosed) {
		return nil
	}
	return flushErr
}

func (a *Adapter) run() {
	defer close(a.stopped)
	for {
		select {
		case <-a.kick:
			a.persistPending()
		case <-a.stop:
			a.persistPending()
			a.mu.Lock()
			for _, w := range a.waiters {
				w.done.Reject(ErrAdapterClosed)
			}
			a.waiters = nil
			a.mu.Unlock()
			return
		}
	}
}

// persistPending writes the latest snapshot until memory and store agree.
func (a *Adapter) persistPending() {
	for {
		a.mu.Lock()
		if a.persisted >= a.version {
			a.mu.Unlock()
			return
		}
		version := a.version
		snapshot := maps.Clone(a.items)
		a.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), a.writeTimeout)
		err := a.store.Store(ctx, a.storeKey, snapshot)
		cancel()
		if err != nil {
			a.logger.Warn("storage persist failed", "error", err, "items", len(snapshot))
		}

		a.mu.Lock()
		if version > a.persisted {
			a.persisted = version
		}
		a.releaseLocked(a.persisted)
		a.mu.Unlock()
	}
}

func (a *Adapter) releaseLocked(upTo uint64) {
	kept := a.waiters[:0]
	for _, w := range a.waiters {
		if w.version <= upTo {
			w.done.Resolve(struct{}{})
			continue
		}
		kept = append(kept, w)
	}
	a.waiters = kept
}
