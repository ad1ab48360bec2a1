package realtime

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"

	"shoppinglist-api/internal/logging"
	"shoppinglist-api/internal/models"
	"shoppinglist-api/internal/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrClosed = errors.New("sync component is closed")

// DirectoryConfig holds tuning for the list directory
type DirectoryConfig struct {
	// CountConcurrency caps the parallel item count reads per snapshot
	CountConcurrency int
}

// NewDirectoryConfigFromEnv creates a DirectoryConfig from environment variables
func NewDirectoryConfigFromEnv() *DirectoryConfig {
	concurrency := 16
	if value := os.Getenv("SYNC_COUNT_CONCURRENCY"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			concurrency = parsed
		}
	}
	return &DirectoryConfig{CountConcurrency: concurrency}
}

// countPush is the last live count reported for a list
type countPush struct {
	count int
	stamp uint64
}

// Directory keeps the local list view in sync with the lists collection.
//
// itemsCount has two writers: the snapshot projection (cold count reads) and
// UpdateItemCount (live pushes from open Detail syncs). Both are serialized by mu,
// and the last writer for a list id wins. A push that lands while a projection is
// in flight is re-applied on top of the projection's result.
type Directory struct {
	store   store.Store
	counter *ItemCounter
	config  DirectoryConfig

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	view    []models.List
	index   map[string]int // list id -> position in view
	pushes  map[string]countPush
	stamp   uint64
	sub     store.Subscription
	started bool
	closed  bool
	ready   bool
	lastErr error

	feed *Feed[[]models.List]
}

// NewDirectory creates a directory sync over the given store
func NewDirectory(s store.Store, counter *ItemCounter, cfg *DirectoryConfig) *Directory {
	if counter == nil {
		counter = NewItemCounter(s)
	}
	if cfg == nil {
		cfg = &DirectoryConfig{}
	}
	config := *cfg
	if config.CountConcurrency <= 0 {
		config.CountConcurrency = 16
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Directory{
		store:   s,
		counter: counter,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
		view:    []models.List{},
		index:   make(map[string]int),
		pushes:  make(map[string]countPush),
		feed:    NewFeed[[]models.List](),
	}
}

// Start subscribes to the lists collection. Calling Start twice is a no-op.
func (d *Directory) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.started {
		return nil
	}

	sub, err := d.store.Subscribe(store.ListsCollection, d.applySnapshot, d.recordError)
	if err != nil {
		return err
	}
	d.sub = sub
	d.started = true

	logging.Logger.WithField("subscription_id", sub.ID()).Debug("List directory subscribed")
	return nil
}

// Close cancels the subscription and in-flight count reads. No view change
// happens after Close returns.
func (d *Directory) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	sub := d.sub
	d.sub = nil
	d.mu.Unlock()

	d.cancel()
	if sub != nil {
		sub.Unsubscribe()
	}
	d.feed.Close()
}

// View returns a copy of the current list view
func (d *Directory) View() []models.List {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyLists(d.view)
}

// Ready reports whether at least one snapshot has been published
func (d *Directory) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

// Healthy reports whether the last subscription read succeeded
func (d *Directory) Healthy() bool {
	return d.LastError() == nil
}

// LastError returns the last subscription read error, cleared by the next good snapshot
func (d *Directory) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Watch streams the list view; every change re-delivers the whole view
func (d *Directory) Watch() (<-chan []models.List, func()) {
	return d.feed.Watch()
}

// UpdateItemCount sets the count of one list without rebuilding the view.
// Entries for other lists are left untouched; unknown ids are remembered for the
// next projection.
func (d *Directory) UpdateItemCount(listID string, count int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.stamp++
	d.pushes[listID] = countPush{count: count, stamp: d.stamp}

	i, ok := d.index[listID]
	if !ok || d.view[i].ItemsCount == count {
		return
	}
	view := copyLists(d.view)
	view[i].ItemsCount = count
	d.view = view
	d.feed.Publish(copyLists(view))
}

func (d *Directory) applySnapshot(snap store.Snapshot) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	startStamp := d.stamp
	d.mu.Unlock()

	lists := d.project(snap.Documents)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	index := make(map[string]int, len(lists))
	live := make(map[string]countPush, len(lists))
	for i := range lists {
		id := lists[i].ID
		index[id] = i
		if push, ok := d.pushes[id]; ok {
			if push.stamp > startStamp {
				lists[i].ItemsCount = push.count
			}
			live[id] = push
		}
	}

	d.view = lists
	d.index = index
	// drop pushes for lists that no longer exist
	d.pushes = live
	d.ready = true
	d.lastErr = nil
	d.feed.Publish(copyLists(lists))

	logging.Logger.WithFields(logrus.Fields{
		"collection": snap.Collection,
		"lists":      len(lists),
	}).Debug("List view published")
}

// project builds the list view for one snapshot. Count reads fan out and the
// result is returned once all of them resolved; a failed read yields 0.
func (d *Directory) project(docs []store.Document) []models.List {
	lists := make([]models.List, len(docs))

	var g errgroup.Group
	g.SetLimit(d.config.CountConcurrency)
	for i, doc := range docs {
		lists[i] = models.ListFromFields(doc.ID, doc.Fields)
		g.Go(func() error {
			lists[i].ItemsCount = d.counter.Count(d.ctx, doc.ID)
			return nil
		})
	}
	_ = g.Wait()

	return lists
}

func (d *Directory) recordError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.lastErr = err
	logging.Logger.WithFields(logrus.Fields{
		"collection": store.ListsCollection,
		"error":      err.Error(),
	}).Warn("List directory read failed, keeping last view")
}

func copyLists(lists []models.List) []models.List {
	out := make([]models.List, len(lists))
	copy(out, lists)
	return out
}
