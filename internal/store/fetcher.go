package store

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrSuperseded reports that a refresh was overtaken by a newer one before
// its result could be applied. Callers treat it as benign: the newer refresh
// owns the outcome.
var ErrSuperseded = errors.New("refresh superseded by a newer one")

// FetchFunc loads the authoritative snapshot from the remote store.
type FetchFunc[T Entity] func(ctx context.Context) ([]T, error)

// Fetcher coordinates full re-fetches of a collection. Triggering a refresh
// while a prior one is in flight aborts the prior fetch and discards its
// result even if it completes: only the latest initiated, non-superseded
// fetch is applied, so a slow stale response can never clobber fresher data.
type Fetcher[T Entity] struct {
	col    *Collection[T]
	fetch  FetchFunc[T]
	logger *zap.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewFetcher[T Entity](col *Collection[T], fetch FetchFunc[T], logger ...*zap.Logger) *Fetcher[T] {
	l := zap.L().Named("store.fetcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("store.fetcher")
	}
	return &Fetcher[T]{col: col, fetch: fetch, logger: l}
}

// Refresh loads a fresh snapshot and replaces the collection contents,
// unless a newer Refresh supersedes this one first.
func (f *Fetcher[T]) Refresh(ctx context.Context) error {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	mine := f.seq
	fctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.mu.Unlock()

	items, err := f.fetch(fctx)

	f.mu.Lock()
	superseded := f.seq != mine
	if !superseded {
		f.cancel = nil
	}
	f.mu.Unlock()
	cancel()

	if superseded {
		f.logger.Debug("refresh superseded, result discarded")
		return ErrSuperseded
	}
	if err != nil {
		f.logger.Warn("refresh failed", zap.Error(err))
		return err
	}

	f.col.Replace(items)
	f.logger.Debug("refresh applied", zap.Int("items", len(items)))
	return nil
}
