package store

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// loadFunc reads the current documents of a collection
type loadFunc func(ctx context.Context, collection string) ([]Document, error)

// hub fans change notifications out to subscriptions.
// Each subscription owns one goroutine, so snapshots of one subscription are delivered
// in order and a slow consumer only stalls itself.
type hub struct {
	mu     sync.Mutex
	subs   map[string]map[string]*subscription // collection -> subscription id -> subscription
	load   loadFunc
	poll   time.Duration
	closed bool
}

func newHub(load loadFunc, poll time.Duration) *hub {
	return &hub{
		subs: make(map[string]map[string]*subscription),
		load: load,
		poll: poll,
	}
}

type subscription struct {
	id         string
	collection string
	hub        *hub
	ctx        context.Context
	cancel     context.CancelFunc
	kick       chan struct{}
	onSnapshot SnapshotFunc
	onError    ErrorFunc
	once       sync.Once

	lastSignature uint64
	delivered     bool
}

func (h *hub) subscribe(collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (*subscription, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{
		id:         uuid.NewString(),
		collection: collection,
		hub:        h,
		ctx:        ctx,
		cancel:     cancel,
		kick:       make(chan struct{}, 1),
		onSnapshot: onSnapshot,
		onError:    onError,
	}
	// initial snapshot
	sub.kick <- struct{}{}

	if h.subs[collection] == nil {
		h.subs[collection] = make(map[string]*subscription)
	}
	h.subs[collection][sub.id] = sub

	go sub.run()
	return sub, nil
}

// notify wakes every subscription of collection and of the collections above it,
// so a write to lists/{id}/items also wakes lists subscribers whose projections
// carry item counts. Pending wake-ups coalesce: the subscription reads the latest
// state anyway.
func (h *hub) notify(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range ancestorCollections(collection) {
		for _, sub := range h.subs[c] {
			select {
			case sub.kick <- struct{}{}:
			default:
			}
		}
	}
}

// ancestorCollections returns collection followed by each parent collection,
// e.g. lists/L1/items -> [lists/L1/items lists]
func ancestorCollections(collection string) []string {
	out := []string{collection}
	segments := strings.Split(collection, "/")
	for n := len(segments) - 2; n > 0; n -= 2 {
		out = append(out, strings.Join(segments[:n], "/"))
	}
	return out
}

func (h *hub) remove(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subs[sub.collection]; ok {
		delete(subs, sub.id)
		if len(subs) == 0 {
			delete(h.subs, sub.collection)
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, subs := range h.subs {
		n += len(subs)
	}
	return n
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, subs := range h.subs {
		for _, sub := range subs {
			sub.cancel()
		}
	}
	h.subs = make(map[string]map[string]*subscription)
}

func (s *subscription) ID() string {
	return s.id
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		s.hub.remove(s)
	})
}

func (s *subscription) run() {
	var tick <-chan time.Time
	if s.hub.poll > 0 {
		ticker := time.NewTicker(s.hub.poll)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.kick:
			s.deliver(true)
		case <-tick:
			s.deliver(false)
		}
	}
}

// deliver reads the collection and hands the snapshot over. Poll-driven reads are
// dropped when nothing changed since the last delivery.
func (s *subscription) deliver(force bool) {
	docs, err := s.hub.load(s.ctx, s.collection)
	if s.ctx.Err() != nil {
		return
	}
	if err != nil {
		if s.onError != nil {
			s.onError(err)
		}
		return
	}

	sig := signature(docs)
	if !force && s.delivered && sig == s.lastSignature {
		return
	}
	s.lastSignature = sig
	s.delivered = true

	if s.onSnapshot != nil {
		s.onSnapshot(Snapshot{Collection: s.collection, Documents: docs})
	}
}

func signature(docs []Document) uint64 {
	h := fnv.New64a()
	// map keys are marshalled in sorted order, so equal content hashes equally
	if err := json.NewEncoder(h).Encode(docs); err != nil {
		return 0
	}
	return h.Sum64()
}
