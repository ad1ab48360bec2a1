package mutation

import (
	"context"
	"fmt"

	"shoppinglist-api/internal/logging"
	"shoppinglist-api/internal/models"
	"shoppinglist-api/internal/store"

	"github.com/sirupsen/logrus"
)

// Pipeline executes list and item mutations against the store.
// It never touches local views: results come back through the sync subscriptions.
type Pipeline struct {
	store store.Store
}

// NewPipeline creates a mutation pipeline over the given store
func NewPipeline(s store.Store) *Pipeline {
	return &Pipeline{store: s}
}

// CreateList adds a list document and returns its id
func (p *Pipeline) CreateList(ctx context.Context, name string) (string, error) {
	name, err := ValidateName(name)
	if err != nil {
		return "", err
	}

	id, err := p.store.Add(ctx, store.ListsCollection, models.ListFields(name))
	if err != nil {
		logFailure("create list", err, logrus.Fields{"name": name})
		return "", fmt.Errorf("create list: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{"list_id": id, "name": name}).Info("List created")
	return id, nil
}

// RenameList replaces the name of a list; items are not touched
func (p *Pipeline) RenameList(ctx context.Context, listID, name string) error {
	if err := requireID(listID); err != nil {
		return err
	}
	name, err := ValidateName(name)
	if err != nil {
		return err
	}

	if err := p.store.Update(ctx, store.ListDocument(listID), models.ListFields(name)); err != nil {
		logFailure("rename list", err, logrus.Fields{"list_id": listID})
		return fmt.Errorf("rename list: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{"list_id": listID, "name": name}).Info("List renamed")
	return nil
}

// DeleteList deletes every item of the list one at a time, then the list itself.
// A failed item read aborts before anything is deleted. A failed delete stops the
// cascade where it is, leaving the list and its remaining items in place.
func (p *Pipeline) DeleteList(ctx context.Context, listID string) (DeleteResult, error) {
	var result DeleteResult
	if err := requireID(listID); err != nil {
		return result, err
	}

	items, err := p.store.Get(ctx, store.ItemsCollection(listID))
	if err != nil {
		derr := &DeleteError{ListID: listID, Stage: StageReadItems, Err: err}
		logFailure("delete list", derr, logrus.Fields{"list_id": listID, "stage": StageReadItems})
		return result, derr
	}
	result.ItemsTotal = len(items)

	for _, item := range items {
		if err := p.store.Delete(ctx, store.ItemDocument(listID, item.ID)); err != nil {
			derr := &DeleteError{
				ListID:       listID,
				Stage:        StageDeleteItem,
				ItemID:       item.ID,
				DeleteResult: result,
				Err:          err,
			}
			logFailure("delete list", derr, logrus.Fields{
				"list_id":       listID,
				"item_id":       item.ID,
				"stage":         StageDeleteItem,
				"items_deleted": result.ItemsDeleted,
				"items_total":   result.ItemsTotal,
			})
			return result, derr
		}
		result.ItemsDeleted++
	}

	if err := p.store.Delete(ctx, store.ListDocument(listID)); err != nil {
		derr := &DeleteError{ListID: listID, Stage: StageDeleteList, DeleteResult: result, Err: err}
		logFailure("delete list", derr, logrus.Fields{"list_id": listID, "stage": StageDeleteList})
		return result, derr
	}

	logging.Logger.WithFields(logrus.Fields{
		"list_id":       listID,
		"items_deleted": result.ItemsDeleted,
	}).Info("List deleted")
	return result, nil
}

// ShareList is not implemented and always reports ErrShareUnavailable
func (p *Pipeline) ShareList(_ context.Context, listID string) error {
	if err := requireID(listID); err != nil {
		return err
	}
	return ErrShareUnavailable
}

// AddItem parses and validates the item, then adds it under the list
func (p *Pipeline) AddItem(ctx context.Context, listID, name, quantity, unit string) (string, error) {
	if err := requireID(listID); err != nil {
		return "", err
	}
	fields, err := itemFields(name, quantity, unit)
	if err != nil {
		return "", err
	}

	id, err := p.store.Add(ctx, store.ItemsCollection(listID), fields)
	if err != nil {
		logFailure("add item", err, logrus.Fields{"list_id": listID})
		return "", fmt.Errorf("add item: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{"list_id": listID, "item_id": id}).Info("Item added")
	return id, nil
}

// EditItem replaces name, quantity and unit of an existing item
func (p *Pipeline) EditItem(ctx context.Context, listID, itemID, name, quantity, unit string) error {
	if err := requireID(listID); err != nil {
		return err
	}
	if err := requireID(itemID); err != nil {
		return err
	}
	fields, err := itemFields(name, quantity, unit)
	if err != nil {
		return err
	}

	if err := p.store.Update(ctx, store.ItemDocument(listID, itemID), fields); err != nil {
		logFailure("edit item", err, logrus.Fields{"list_id": listID, "item_id": itemID})
		return fmt.Errorf("edit item: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{"list_id": listID, "item_id": itemID}).Info("Item updated")
	return nil
}

// DeleteItem removes one item from a list
func (p *Pipeline) DeleteItem(ctx context.Context, listID, itemID string) error {
	if err := requireID(listID); err != nil {
		return err
	}
	if err := requireID(itemID); err != nil {
		return err
	}

	if err := p.store.Delete(ctx, store.ItemDocument(listID, itemID)); err != nil {
		logFailure("delete item", err, logrus.Fields{"list_id": listID, "item_id": itemID})
		return fmt.Errorf("delete item: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{"list_id": listID, "item_id": itemID}).Info("Item deleted")
	return nil
}

// Items reads the current items of a list once
func (p *Pipeline) Items(ctx context.Context, listID string) ([]models.Item, error) {
	if err := requireID(listID); err != nil {
		return nil, err
	}

	docs, err := p.store.Get(ctx, store.ItemsCollection(listID))
	if err != nil {
		logFailure("read items", err, logrus.Fields{"list_id": listID})
		return nil, fmt.Errorf("read items: %w", err)
	}

	items := make([]models.Item, 0, len(docs))
	for _, doc := range docs {
		items = append(items, models.ItemFromFields(doc.ID, doc.Fields))
	}
	return items, nil
}

func itemFields(name, quantity, unit string) (store.Fields, error) {
	name, err := ValidateName(name)
	if err != nil {
		return nil, err
	}
	qty, err := ParseQuantity(quantity)
	if err != nil {
		return nil, err
	}
	return models.ItemFields(name, qty, unit), nil
}

func logFailure(op string, err error, fields logrus.Fields) {
	fields["operation"] = op
	fields["error"] = err.Error()
	logging.Logger.WithFields(fields).Error("Store mutation failed")
}
