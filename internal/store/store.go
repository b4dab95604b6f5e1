package store

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"fakhiuBack/internal/listing"
	"fakhiuBack/internal/models"
)

// Logger is the minimal logging surface the store needs.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Fetcher returns the raw JSON body of one backend collection.
type Fetcher interface {
	Collection(ctx context.Context, tab models.Tab, token string) ([]byte, error)
}

// Cache is an optional second level shared across processes.
type Cache interface {
	Get(ctx context.Context, key string) (models.Snapshot, bool, error)
	Set(ctx context.Context, key string, snap models.Snapshot) error
	Delete(ctx context.Context, key string) error
}

// Key derives the map and cache key of a token. Tokens are never stored.
func Key(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	snap    models.Snapshot
	loaded  bool
	issued  uint64
	applied uint64
}

// Store holds one listing snapshot per token. Loads replace snapshots
// wholesale; a load only commits when no newer load for the same token
// has committed before it.
type Store struct {
	fetcher Fetcher
	cache   Cache
	log     Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	watch   []func(key string, snap models.Snapshot)

	group singleflight.Group
}

// New builds a store. cache may be nil.
func New(fetcher Fetcher, cache Cache, log Logger) *Store {
	return &Store{
		fetcher: fetcher,
		cache:   cache,
		log:     log,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// OnCommit registers fn to run after every committed load.
func (s *Store) OnCommit(fn func(key string, snap models.Snapshot)) {
	s.mu.Lock()
	s.watch = append(s.watch, fn)
	s.mu.Unlock()
}

// Get returns the snapshot for token, loading it on first use. Concurrent
// first uses of one token share a single load.
func (s *Store) Get(ctx context.Context, token string) (models.Snapshot, error) {
	key := Key(token)
	if snap, ok := s.cached(key); ok {
		return snap, nil
	}

	if s.cache != nil {
		snap, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Errorf("snapshot cache get: %v", err)
		} else if ok {
			s.adopt(key, snap)
			return s.current(key), nil
		}
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		if snap, ok := s.cached(key); ok {
			return snap, nil
		}
		return s.load(ctx, key, token)
	})
	if err != nil {
		return models.Snapshot{}, err
	}
	return v.(models.Snapshot), nil
}

// Refresh always starts a new load for token and returns the snapshot
// that is current once it finishes.
func (s *Store) Refresh(ctx context.Context, token string) (models.Snapshot, error) {
	return s.load(ctx, Key(token), token)
}

// Invalidate forgets the snapshot of a token. Loads already running for
// the token are discarded when they finish; generations keep counting.
func (s *Store) Invalidate(ctx context.Context, token string) {
	key := Key(token)
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		e.snap = models.Snapshot{}
		e.loaded = false
		e.applied = e.issued
	}
	s.mu.Unlock()
	if s.cache != nil {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Errorf("snapshot cache delete: %v", err)
		}
	}
}

func (s *Store) load(ctx context.Context, key, token string) (models.Snapshot, error) {
	s.mu.Lock()
	e := s.entry(key)
	e.issued++
	gen := e.issued
	s.mu.Unlock()

	snap := s.fetch(ctx, token)
	snap.Generation = gen

	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, err
	}

	committed := s.commit(key, snap)
	if committed && s.cache != nil {
		if err := s.cache.Set(ctx, key, snap); err != nil {
			s.log.Errorf("snapshot cache set: %v", err)
		}
	}
	if !committed {
		s.log.Infof("discarding superseded load generation=%d", gen)
	}
	return s.current(key), nil
}

// fetch loads both collections in parallel. A failing collection is
// replaced by an empty one; the other is kept.
func (s *Store) fetch(ctx context.Context, token string) models.Snapshot {
	var requests, offers []models.Listing
	var g errgroup.Group
	g.Go(func() error {
		requests = s.fetchCollection(ctx, models.TabRequests, token)
		return nil
	})
	g.Go(func() error {
		offers = s.fetchCollection(ctx, models.TabOffers, token)
		return nil
	})
	_ = g.Wait()

	return models.Snapshot{
		Requests:  requests,
		Offers:    offers,
		FetchedAt: s.now(),
	}
}

func (s *Store) fetchCollection(ctx context.Context, tab models.Tab, token string) []models.Listing {
	body, err := s.fetcher.Collection(ctx, tab, token)
	if err != nil {
		s.log.Errorf("fetch %s: %v", tab, err)
		return []models.Listing{}
	}
	items, skipped, err := listing.DecodeCollection(tab, body)
	if err != nil {
		s.log.Errorf("decode %s: %v", tab, err)
		return []models.Listing{}
	}
	if skipped > 0 {
		s.log.Infof("skipped %d malformed %s records", skipped, tab)
	}
	return items
}

func (s *Store) commit(key string, snap models.Snapshot) bool {
	s.mu.Lock()
	e := s.entry(key)
	if snap.Generation <= e.applied {
		s.mu.Unlock()
		return false
	}
	e.snap = snap
	e.loaded = true
	e.applied = snap.Generation
	watchers := append([]func(string, models.Snapshot){}, s.watch...)
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(key, snap)
	}
	return true
}

// adopt installs a snapshot read from the shared cache unless a local
// load has already committed.
func (s *Store) adopt(key string, snap models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(key)
	if e.loaded {
		return
	}
	e.snap = snap
	e.loaded = true
}

func (s *Store) cached(key string) (models.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !e.loaded {
		return models.Snapshot{}, false
	}
	return e.snap, true
}

func (s *Store) current(key string) models.Snapshot {
	snap, _ := s.cached(key)
	return snap
}

// entry must be called with s.mu held.
func (s *Store) entry(key string) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}
