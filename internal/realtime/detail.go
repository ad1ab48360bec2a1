package realtime

import (
	"reflect"
	"sync"

	"shoppinglist-api/internal/logging"
	"shoppinglist-api/internal/models"
	"shoppinglist-api/internal/store"

	"github.com/sirupsen/logrus"
)

// CountReporter receives the live item count of an open list.
// *Directory implements it.
type CountReporter interface {
	UpdateItemCount(listID string, count int)
}

// CountReporterFunc adapts a function to CountReporter
type CountReporterFunc func(listID string, count int)

// UpdateItemCount calls f(listID, count)
func (f CountReporterFunc) UpdateItemCount(listID string, count int) {
	f(listID, count)
}

// Detail keeps the item view of one list in sync with its item subcollection
// and reports the live count upward.
type Detail struct {
	store store.Store

	mu         sync.Mutex
	listID     string
	reporter   CountReporter
	items      []models.Item
	sub        store.Subscription
	generation uint64
	closed     bool
	lastErr    error

	feed *Feed[[]models.Item]
}

// NewDetail creates an inactive detail sync; call Open to subscribe
func NewDetail(s store.Store) *Detail {
	return &Detail{
		store: s,
		items: []models.Item{},
		feed:  NewFeed[[]models.Item](),
	}
}

// OpenDetail creates a detail sync subscribed to listID
func OpenDetail(s store.Store, listID string, reporter CountReporter) (*Detail, error) {
	d := NewDetail(s)
	if err := d.Open(listID, reporter); err != nil {
		return nil, err
	}
	return d, nil
}

// Open subscribes to the items of listID, reporting counts to reporter (may be nil).
// When the list id or the reporter differ from the current ones, the previous
// subscription is released before the new one starts.
func (d *Detail) Open(listID string, reporter CountReporter) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.sub != nil && d.listID == listID && sameReporter(d.reporter, reporter) {
		return nil
	}

	if d.sub != nil {
		d.sub.Unsubscribe()
		d.sub = nil
	}
	d.generation++
	d.listID = listID
	d.reporter = reporter
	d.items = []models.Item{}
	d.lastErr = nil

	gen := d.generation
	sub, err := d.store.Subscribe(
		store.ItemsCollection(listID),
		func(snap store.Snapshot) { d.applySnapshot(gen, snap) },
		func(err error) { d.recordError(gen, err) },
	)
	if err != nil {
		return err
	}
	d.sub = sub

	logging.Logger.WithFields(logrus.Fields{
		"list_id":         listID,
		"subscription_id": sub.ID(),
	}).Debug("List detail subscribed")
	return nil
}

// Close releases the subscription. No item view change or count report happens
// after Close returns. Close is idempotent.
func (d *Detail) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.generation++
	sub := d.sub
	d.sub = nil
	d.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	d.feed.Close()
}

// ListID returns the list currently followed
func (d *Detail) ListID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listID
}

// Items returns a copy of the current item view
func (d *Detail) Items() []models.Item {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyItems(d.items)
}

// LastError returns the last subscription read error
func (d *Detail) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Watch streams the item view; every change re-delivers the whole view
func (d *Detail) Watch() (<-chan []models.Item, func()) {
	return d.feed.Watch()
}

// applySnapshot replaces the item view and reports the count. The reporter is
// called with mu held so a concurrent Close cannot interleave; it must not call
// back into this Detail.
func (d *Detail) applySnapshot(gen uint64, snap store.Snapshot) {
	items := make([]models.Item, 0, len(snap.Documents))
	for _, doc := range snap.Documents {
		items = append(items, models.ItemFromFields(doc.ID, doc.Fields))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || gen != d.generation {
		return
	}

	d.items = items
	d.lastErr = nil
	d.feed.Publish(copyItems(items))
	if d.reporter != nil {
		d.reporter.UpdateItemCount(d.listID, len(items))
	}
}

func (d *Detail) recordError(gen uint64, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || gen != d.generation {
		return
	}
	d.lastErr = err
	logging.Logger.WithFields(logrus.Fields{
		"list_id": d.listID,
		"error":   err.Error(),
	}).Warn("List detail read failed, keeping last view")
}

// sameReporter compares reporter identity; values of non-comparable dynamic
// types never count as the same reporter.
func sameReporter(a, b CountReporter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func copyItems(items []models.Item) []models.Item {
	out := make([]models.Item, len(items))
	copy(out, items)
	return out
}
