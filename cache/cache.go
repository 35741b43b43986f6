// Package cache implements the client-side query cache: results are keyed by
// (operation, serialized parameters), tagged by resource kind and optional
// id, and invalidated by mutations. Identical concurrent queries are
// de-duplicated into a single in-flight fetch.
package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Tag marks a cached result as depending on a resource kind, optionally
// narrowed to one id. An empty ID is the untargeted form covering every
// instance of the kind.
type Tag struct {
	Kind string
	ID   string
}

// Resource kinds used by the API client.
const (
	KindFile      = "File"
	KindShareLink = "ShareLink"
	KindUser      = "User"
)

// matches reports whether an invalidated tag hits a provided tag. An
// untargeted tag on either side matches any id of the same kind.
func (t Tag) matches(other Tag) bool {
	if t.Kind != other.Kind {
		return false
	}
	return t.ID == "" || other.ID == "" || t.ID == other.ID
}

// Key identifies one cached query result.
type Key struct {
	// Op is the operation name, e.g. "listFiles".
	Op string
	// Arg is the serialized query parameter, empty for parameterless queries.
	Arg string
}

func (k Key) String() string {
	if k.Arg == "" {
		return k.Op
	}
	return k.Op + "(" + k.Arg + ")"
}

// FetchFunc produces a fresh result for a query.
type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	value any
	valid bool
	stale bool
	// gen increments on every invalidation. A fetch records the generation
	// it started under and may only mark the entry fresh if no invalidation
	// landed while it was in flight.
	gen   uint64
	tags  []Tag
	fetch FetchFunc
	subs  map[*Subscription]struct{}
}

// Store is the process-wide query cache. All cached data is ephemeral and
// rebuilt per session; only the session store persists across restarts.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

func New() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Query returns the cached result for key if it is present and fresh.
// Otherwise it fetches, caches the result under the given tags, and returns
// it. Concurrent Query calls for the same key share one fetch. A stale entry
// keeps its last value until the refetch succeeds, so readers using Peek
// never observe a flash-to-empty.
func (s *Store) Query(ctx context.Context, key Key, tags []Tag, fetch FetchFunc) (any, error) {
	k := key.String()

	s.mu.Lock()
	e, ok := s.entries[k]
	if !ok {
		e = &entry{subs: make(map[*Subscription]struct{})}
		s.entries[k] = e
	}
	e.tags = tags
	e.fetch = fetch
	if e.valid && !e.stale {
		v := e.value
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	return s.refetch(ctx, k, e)
}

// refetch runs the entry's fetch through singleflight and atomically swaps
// the new value in on success. Failure leaves any previous value in place,
// still marked stale. A result whose fetch started before an invalidation
// never clears the stale mark: the data predates the mutation.
func (s *Store) refetch(ctx context.Context, k string, e *entry) (any, error) {
	v, err, _ := s.group.Do(k, func() (any, error) {
		s.mu.Lock()
		fetch := e.fetch
		gen := e.gen
		s.mu.Unlock()

		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if e.gen != gen {
			// Invalidated (or cleared) mid-flight. The result goes to the
			// caller that asked for it but is never cached: any previous
			// value stays, still stale, and the next read refetches.
			s.mu.Unlock()
			return v, nil
		}
		e.value = v
		e.valid = true
		e.stale = false
		subs := make([]*Subscription, 0, len(e.subs))
		for sub := range e.subs {
			subs = append(subs, sub)
		}
		s.mu.Unlock()

		for _, sub := range subs {
			sub.notify()
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Peek returns the last known value for key without triggering a fetch.
// A stale entry still returns its previous value with stale=true.
func (s *Store) Peek(key Key) (value any, ok bool, stale bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, found := s.entries[key.String()]
	if !found || !e.valid {
		return nil, false, false
	}
	return e.value, true, e.stale
}

// Invalidate marks every entry whose tag set intersects the given tags as
// stale. Entries with active subscribers refetch immediately in the
// background; the rest refetch lazily on their next Query.
func (s *Store) Invalidate(tags ...Tag) {
	type pending struct {
		key string
		e   *entry
	}
	var refresh []pending

	s.mu.Lock()
	for k, e := range s.entries {
		if !intersects(tags, e.tags) {
			continue
		}
		e.stale = true
		e.gen++
		// Detach any in-flight fetch so the next refetch starts fresh
		// instead of joining a pre-mutation call.
		s.group.Forget(k)
		if len(e.subs) > 0 && e.fetch != nil {
			refresh = append(refresh, pending{key: k, e: e})
		}
	}
	s.mu.Unlock()

	for _, p := range refresh {
		go func(p pending) {
			_, _ = s.refetch(context.Background(), p.key, p.e)
		}(p)
	}
}

// Clear drops every cached entry. Used when the session becomes anonymous:
// no previously cached data may be served to the new session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		e.gen++
		s.group.Forget(k)
		if len(e.subs) == 0 {
			delete(s.entries, k)
			continue
		}
		// Keep subscribed entries so their handles stay usable, but drop the
		// data itself.
		e.value = nil
		e.valid = false
		e.stale = false
	}
}

func intersects(invalidated, provided []Tag) bool {
	for _, inv := range invalidated {
		for _, p := range provided {
			if inv.matches(p) {
				return true
			}
		}
	}
	return false
}

// Do is the typed wrapper around Store.Query.
func Do[T any](ctx context.Context, s *Store, key Key, tags []Tag, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := s.Query(ctx, key, tags, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		// Two operations sharing a key with different result types is a
		// programming error; surface it instead of serving a zero value.
		return zero, fmt.Errorf("cache: %s: cached value is %T, want %T", key, v, zero)
	}
	return typed, nil
}
