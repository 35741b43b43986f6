// Package notify is the in-process notification channel for user-facing
// alerts (upload finished, share link created, errors). It replaces ambient
// global state with an explicit, dependency-injected bus.
package notify

import "sync"

// Level classifies an alert.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Alert is one user-facing message.
type Alert struct {
	Level   Level
	Message string
}

// Notifier is the producer-side interface components depend on.
type Notifier interface {
	Notify(level Level, message string)
}

// Discard is a Notifier that drops everything.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Level, string) {}

// Bus fans alerts out to subscribers. Publishing never blocks: an alert a
// subscriber cannot receive immediately is dropped for that subscriber.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Alert]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[chan Alert]struct{})}
}

// Notify delivers the alert to every current subscriber.
func (b *Bus) Notify(level Level, message string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- Alert{Level: level, Message: message}:
		default:
		}
	}
}

// Subscribe registers a new subscriber with the given channel buffer and
// returns the channel plus a cancel function. Cancel closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Alert, func()) {
	ch := make(chan Alert, buffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
