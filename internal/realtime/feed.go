package realtime

import "sync"

// Feed pushes full views to watchers. Each watcher holds at most one pending view:
// a newer view replaces an unread one, since every view is complete on its own.
type Feed[T any] struct {
	mu       sync.Mutex
	watchers map[uint64]chan T
	next     uint64
	current  T
	has      bool
	closed   bool
}

// NewFeed creates an empty feed
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{watchers: make(map[uint64]chan T)}
}

// Watch returns a channel receiving every published view, starting with the current
// one if any. The cancel func closes the channel and is safe to call more than once.
func (f *Feed[T]) Watch() (<-chan T, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan T, 1)
	if f.closed {
		close(ch)
		return ch, func() {}
	}

	id := f.next
	f.next++
	f.watchers[id] = ch
	if f.has {
		ch <- f.current
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if w, ok := f.watchers[id]; ok {
				delete(f.watchers, id)
				close(w)
			}
		})
	}
}

// Publish replaces the current view and hands it to every watcher without blocking
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	f.current = v
	f.has = true
	for _, ch := range f.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// Watchers returns the number of open watch channels
func (f *Feed[T]) Watchers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers)
}

// Close closes every watch channel; later publishes are ignored
func (f *Feed[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.watchers {
		delete(f.watchers, id)
		close(ch)
	}
}
