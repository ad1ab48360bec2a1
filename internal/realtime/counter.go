package realtime

import (
	"context"

	"shoppinglist-api/internal/logging"
	"shoppinglist-api/internal/store"

	"github.com/sirupsen/logrus"
)

// ItemCounter reads the size of a list's item subcollection
type ItemCounter struct {
	store store.Store
}

// NewItemCounter creates a counter over the given store
func NewItemCounter(s store.Store) *ItemCounter {
	return &ItemCounter{store: s}
}

// Count returns the number of items under listID with a one-shot read.
// Read failures are logged and reported as 0, so 0 means "empty or unknown".
func (c *ItemCounter) Count(ctx context.Context, listID string) int {
	docs, err := c.store.Get(ctx, store.ItemsCollection(listID))
	if err != nil {
		entry := logging.Logger.WithFields(logrus.Fields{
			"list_id": listID,
			"error":   err.Error(),
		})
		if ctx.Err() != nil {
			entry.Debug("Item count read cancelled")
		} else {
			entry.Warn("Failed to count list items, using 0")
		}
		return 0
	}
	return len(docs)
}
