package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"fakhiuBack/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

type stubFetcher struct {
	calls    atomic.Int32
	requests func(call int32) ([]byte, error)
	offers   func(call int32) ([]byte, error)
}

func (f *stubFetcher) Collection(ctx context.Context, tab models.Tab, token string) ([]byte, error) {
	n := f.calls.Add(1)
	if tab == models.TabOffers {
		return f.offers(n)
	}
	return f.requests(n)
}

func body(ids ...string) func(int32) ([]byte, error) {
	return func(int32) ([]byte, error) {
		out := "["
		for i, id := range ids {
			if i > 0 {
				out += ","
			}
			out += fmt.Sprintf(`{"id":%q,"routeFrom":"A","routeTo":"B"}`, id)
		}
		return []byte(out + "]"), nil
	}
}

type memCache struct {
	mu   sync.Mutex
	data map[string]models.Snapshot
}

func (c *memCache) Get(_ context.Context, key string) (models.Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.data[key]
	return s, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, snap models.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = snap
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func TestGetLoadsBothCollections(t *testing.T) {
	f := &stubFetcher{requests: body("r1", "r2"), offers: body("o1")}
	s := New(f, nil, nopLogger{})

	snap, err := s.Get(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, snap.Requests, 2)
	assert.Len(t, snap.Offers, 1)
	assert.Equal(t, models.TabOffers, snap.Offers[0].Collection)
	assert.Equal(t, uint64(1), snap.Generation)

	_, err = s.Get(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load(), "second get is served from memory")
}

func TestFailedCollectionIsEmpty(t *testing.T) {
	f := &stubFetcher{
		requests: func(int32) ([]byte, error) { return nil, errors.New("down") },
		offers:   body("o1"),
	}
	snap, err := New(f, nil, nopLogger{}).Get(context.Background(), "tok")
	require.NoError(t, err)
	assert.Empty(t, snap.Requests)
	assert.NotNil(t, snap.Requests)
	assert.Len(t, snap.Offers, 1)

	f = &stubFetcher{
		requests: body("r1"),
		offers:   func(int32) ([]byte, error) { return []byte(`{"message":"oops"}`), nil },
	}
	snap, err = New(f, nil, nopLogger{}).Get(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, snap.Requests, 1)
	assert.Empty(t, snap.Offers)
}

func TestConcurrentGetsShareOneLoad(t *testing.T) {
	release := make(chan struct{})
	f := &stubFetcher{
		requests: func(int32) ([]byte, error) { <-release; return []byte(`[]`), nil },
		offers:   func(int32) ([]byte, error) { <-release; return []byte(`[]`), nil },
	}
	s := New(f, nil, nopLogger{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Get(context.Background(), "tok")
			assert.NoError(t, err)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(2), f.calls.Load())
}

func TestLatestLoadWins(t *testing.T) {
	slow := make(chan struct{})
	f := &stubFetcher{
		requests: func(call int32) ([]byte, error) {
			if call <= 2 {
				<-slow
				return body("stale")(call)
			}
			return body("fresh")(call)
		},
		offers: func(call int32) ([]byte, error) {
			if call <= 2 {
				<-slow
			}
			return []byte(`[]`), nil
		},
	}
	s := New(f, nil, nopLogger{})

	var commits atomic.Int32
	s.OnCommit(func(string, models.Snapshot) { commits.Add(1) })

	firstDone := make(chan models.Snapshot)
	go func() {
		snap, _ := s.Refresh(context.Background(), "tok")
		firstDone <- snap
	}()
	require.Eventually(t, func() bool { return f.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	second, err := s.Refresh(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, second.Requests, 1)
	assert.Equal(t, "fresh", second.Requests[0].ID)
	assert.Equal(t, uint64(2), second.Generation)

	close(slow)
	first := <-firstDone
	require.Len(t, first.Requests, 1)
	assert.Equal(t, "fresh", first.Requests[0].ID, "a superseded load reports the current snapshot")
	assert.Equal(t, int32(1), commits.Load())

	cur, err := s.Get(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "fresh", cur.Requests[0].ID)
}

func TestInvalidateDiscardsRunningLoad(t *testing.T) {
	slow := make(chan struct{})
	f := &stubFetcher{
		requests: func(call int32) ([]byte, error) {
			if call <= 2 {
				<-slow
				return body("old")(call)
			}
			return body("new")(call)
		},
		offers: func(call int32) ([]byte, error) {
			if call <= 2 {
				<-slow
			}
			return []byte(`[]`), nil
		},
	}
	s := New(f, nil, nopLogger{})

	firstDone := make(chan models.Snapshot)
	go func() {
		snap, _ := s.Refresh(context.Background(), "tok")
		firstDone <- snap
	}()
	require.Eventually(t, func() bool { return f.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	s.Invalidate(context.Background(), "tok")
	close(slow)
	first := <-firstDone
	assert.Empty(t, first.Requests, "a load started before sign-out must not commit")
	_, ok := s.cached(Key("tok"))
	assert.False(t, ok)

	next, err := s.Refresh(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, next.Requests, 1)
	assert.Equal(t, "new", next.Requests[0].ID)
	assert.Equal(t, uint64(2), next.Generation)
}

func TestSharedCache(t *testing.T) {
	cache := &memCache{data: map[string]models.Snapshot{}}
	f := &stubFetcher{requests: body("r1"), offers: body()}

	_, err := New(f, cache, nopLogger{}).Get(context.Background(), "tok")
	require.NoError(t, err)
	assert.Contains(t, cache.data, Key("tok"))

	other := New(f, cache, nopLogger{})
	snap, err := other.Get(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, snap.Requests, 1)
	assert.Equal(t, int32(2), f.calls.Load(), "second store reads the shared cache")

	other.Invalidate(context.Background(), "tok")
	assert.NotContains(t, cache.data, Key("tok"))
}

func TestKeyHidesToken(t *testing.T) {
	k := Key("secret-token")
	assert.Len(t, k, 64)
	assert.NotContains(t, k, "secret")
	assert.Equal(t, k, Key("secret-token"))
	assert.NotEqual(t, k, Key("other"))
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb, err := ConnectRedis(addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer rdb.Close()

	c := NewRedisCache(rdb, time.Minute)
	ctx := context.Background()
	key := Key(t.Name())

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	in := models.Snapshot{
		Requests:   []models.Listing{{ID: "1", Collection: models.TabRequests, Rates: []models.Rate{{Price: models.NumericPrice(5), Weight: "1kg"}}}},
		Offers:     []models.Listing{},
		FetchedAt:  time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
		Generation: 3,
	}
	require.NoError(t, c.Set(ctx, key, in))
	out, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)
	require.NoError(t, c.Delete(ctx, key))
}
