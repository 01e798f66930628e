package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Default freshness windows.
const (
	DefaultEventsTTL        = 5 * time.Minute
	DefaultFilterOptionsTTL = 30 * time.Minute
)

// ErrStoreClosed is returned by reads after Close.
var ErrStoreClosed = errors.New("cache store closed")

// FetchFunc loads the value of one key from the origin.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Observer receives cache events, typically to feed metrics.
type Observer interface {
	CacheHit(store string)
	CacheMiss(store string)
	FetchCompleted(store string, duration time.Duration, err error)
	EntriesInvalidated(store string, count int)
}

// Options configures a Store.
type Options[T any] struct {
	// Name labels log lines and metrics, e.g. "events".
	Name string
	// TTL is the freshness window of every entry.
	TTL      time.Duration
	Logger   *slog.Logger
	Observer Observer
	// SizeOf reports the result size for fetch logs.
	SizeOf func(T) int
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Result is a read of one key.
//
// Data is set whenever the key ever fetched successfully, even when Err is
// also set: a failed refresh keeps serving the previous data.
type Result[T any] struct {
	Data      T
	HasData   bool
	FetchedAt time.Time
	IsLoading bool
	IsStale   bool
	Err       error
}

type entry[T any] struct {
	data      T
	hasData   bool
	fetchedAt time.Time
	tags      []Tag
	stale     bool
	err       error
}

// flight tracks an outstanding fetch so that invalidations arriving while it
// runs are not lost when it completes.
type flight struct {
	tags        []Tag
	invalidated bool
}

// Store is an in-process cache of one kind of value keyed by Key.
// Each key has at most one fetch in flight; concurrent readers of the same
// key wait for, and share, that fetch.
type Store[T any] struct {
	name     string
	ttl      time.Duration
	logger   *slog.Logger
	observer Observer
	sizeOf   func(T) int
	now      func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	entries  map[Key]*entry[T]
	inflight map[Key]*flight
	closed   bool
}

// New creates a Store. The caller owns it and must Close it.
func New[T any](opts Options[T]) *Store[T] {
	if opts.TTL <= 0 {
		opts.TTL = DefaultEventsTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Name == "" {
		opts.Name = "cache"
	}
	return &Store[T]{
		name:     opts.Name,
		ttl:      opts.TTL,
		logger:   opts.Logger.With("component", "cache.store", "store", opts.Name),
		observer: opts.Observer,
		sizeOf:   opts.SizeOf,
		now:      opts.Now,
		entries:  make(map[Key]*entry[T]),
		inflight: make(map[Key]*flight),
	}
}

// Name returns the store's label.
func (s *Store[T]) Name() string {
	return s.name
}

// Get returns the value of key, fetching it when the key is empty, expired
// or invalidated. It blocks until the fetch resolves or ctx is done; the
// fetch itself is not cancelled with ctx and still populates the cache.
func (s *Store[T]) Get(ctx context.Context, key Key, tags []Tag, fetch FetchFunc[T]) Result[T] {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Result[T]{Err: ErrStoreClosed}
	}
	if e := s.entries[key]; e != nil && e.hasData && !s.isStaleLocked(e) {
		res := s.resultLocked(key, e)
		s.mu.Unlock()
		s.hit()
		return res
	}
	s.mu.Unlock()
	s.miss()

	ch := s.start(ctx, key, tags, fetch)
	select {
	case <-ch:
		return s.Peek(key)
	case <-ctx.Done():
		res := s.Peek(key)
		if res.Err == nil {
			res.Err = ctx.Err()
		}
		return res
	}
}

// Revalidate starts a fetch for key unless one is already running, and
// returns without waiting for it.
func (s *Store[T]) Revalidate(ctx context.Context, key Key, tags []Tag, fetch FetchFunc[T]) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	s.start(ctx, key, tags, fetch)
}

// Peek returns the current state of key without fetching.
func (s *Store[T]) Peek(key Key) Result[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result[T]{Err: ErrStoreClosed}
	}
	e := s.entries[key]
	if e == nil {
		return Result[T]{IsLoading: s.inflight[key] != nil}
	}
	return s.resultLocked(key, e)
}

// Invalidate marks every entry carrying any of tags as stale, including
// entries whose fetch is in flight, and returns how many entries it marked.
// Nothing is refetched until the next Get.
func (s *Store[T]) Invalidate(tags ...Tag) int {
	if len(tags) == 0 {
		return 0
	}

	s.mu.Lock()
	n := 0
	for key, e := range s.entries {
		if e.stale || !hasAnyTag(e.tags, tags) {
			continue
		}
		marked := *e
		marked.stale = true
		s.entries[key] = &marked
		n++
	}
	for _, f := range s.inflight {
		if hasAnyTag(f.tags, tags) {
			f.invalidated = true
		}
	}
	s.mu.Unlock()

	if n > 0 {
		s.logger.Debug("cache entries invalidated", "count", n, "tags", tagStrings(tags))
	}
	if s.observer != nil {
		s.observer.EntriesInvalidated(s.name, n)
	}
	return n
}

// Len returns the number of entries held.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close drops all entries. Reads after Close return ErrStoreClosed and
// fetches completing after Close are discarded.
func (s *Store[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = make(map[Key]*entry[T])
	return nil
}

func (s *Store[T]) start(ctx context.Context, key Key, tags []Tag, fetch FetchFunc[T]) <-chan singleflight.Result {
	fetchCtx := context.WithoutCancel(ctx)
	tags = append([]Tag(nil), tags...)

	return s.group.DoChan(key.String(), func() (any, error) {
		// Only the leading caller gets here, so the flight is registered once.
		f := &flight{tags: tags}
		s.mu.Lock()
		s.inflight[key] = f
		s.mu.Unlock()

		started := s.now()
		data, err := fetch(fetchCtx)
		duration := s.now().Sub(started)

		s.complete(key, f, data, err, started)
		s.logFetch(fetchCtx, key, data, err, duration)
		if s.observer != nil {
			s.observer.FetchCompleted(s.name, duration, err)
		}
		return nil, err
	})
}

func (s *Store[T]) complete(key Key, f *flight, data T, err error, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Once the entry is visible, a Get that finds it stale must start a new
	// flight rather than join this one.
	s.group.Forget(key.String())
	delete(s.inflight, key)
	if s.closed {
		return
	}

	if err != nil {
		failed := entry[T]{}
		if prev := s.entries[key]; prev != nil {
			failed = *prev
		}
		failed.stale = true
		failed.err = err
		s.entries[key] = &failed
		return
	}

	s.entries[key] = &entry[T]{
		data:      data,
		hasData:   true,
		fetchedAt: fetchedAt,
		tags:      f.tags,
		stale:     f.invalidated,
	}
}

func (s *Store[T]) isStaleLocked(e *entry[T]) bool {
	return e.stale || s.now().Sub(e.fetchedAt) >= s.ttl
}

func (s *Store[T]) resultLocked(key Key, e *entry[T]) Result[T] {
	return Result[T]{
		Data:      e.data,
		HasData:   e.hasData,
		FetchedAt: e.fetchedAt,
		IsLoading: s.inflight[key] != nil,
		IsStale:   e.hasData && s.isStaleLocked(e),
		Err:       e.err,
	}
}

func (s *Store[T]) logFetch(ctx context.Context, key Key, data T, err error, duration time.Duration) {
	attrs := []slog.Attr{
		slog.String("key", key.String()),
		slog.String("scope", key.Scope.String()),
		slog.Float64("duration_ms", float64(duration.Microseconds())/1000),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelWarn, "cache fetch failed", attrs...)
		return
	}
	if s.sizeOf != nil {
		attrs = append(attrs, slog.Int("size", s.sizeOf(data)))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "cache fetch", attrs...)
}

func (s *Store[T]) hit() {
	if s.observer != nil {
		s.observer.CacheHit(s.name)
	}
}

func (s *Store[T]) miss() {
	if s.observer != nil {
		s.observer.CacheMiss(s.name)
	}
}

func tagStrings(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}
