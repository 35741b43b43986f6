package cache

// Subscription marks a query as actively observed, mirroring a mounted UI
// component. Subscribed keys refetch in the background as soon as a mutation
// invalidates them; the handle's channel signals each completed swap.
type Subscription struct {
	store   *Store
	key     string
	updates chan struct{}
}

// Subscribe registers interest in key. The entry is created if it does not
// exist yet, so subscribing before the first Query is fine.
func (s *Store) Subscribe(key Key) *Subscription {
	k := key.String()
	sub := &Subscription{store: s, key: k, updates: make(chan struct{}, 1)}

	s.mu.Lock()
	e, ok := s.entries[k]
	if !ok {
		e = &entry{subs: make(map[*Subscription]struct{})}
		s.entries[k] = e
	}
	e.subs[sub] = struct{}{}
	s.mu.Unlock()

	return sub
}

// Updates signals once per completed background refresh. The channel carries
// at most one pending signal; coalesced updates are intentional.
func (sub *Subscription) Updates() <-chan struct{} {
	return sub.updates
}

// Close stops observing. The pending request, if any, is not aborted; its
// result simply lands in the cache unobserved.
func (sub *Subscription) Close() {
	s := sub.store
	s.mu.Lock()
	if e, ok := s.entries[sub.key]; ok {
		delete(e.subs, sub)
	}
	s.mu.Unlock()
}

func (sub *Subscription) notify() {
	select {
	case sub.updates <- struct{}{}:
	default:
	}
}
