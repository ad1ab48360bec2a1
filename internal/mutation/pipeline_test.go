package mutation

import (
	"context"
	"errors"
	"testing"

	"shoppinglist-api/internal/models"
	"shoppinglist-api/internal/store"
	"shoppinglist-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("store unavailable")

func setupPipeline(t *testing.T) (*Pipeline, *testutil.FaultStore) {
	mem := store.NewMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })
	faults := testutil.NewFaultStore(mem)
	return NewPipeline(faults), faults
}

func listNames(t *testing.T, s store.Store) map[string]string {
	docs, err := s.Get(context.Background(), store.ListsCollection)
	require.NoError(t, err)
	names := make(map[string]string, len(docs))
	for _, doc := range docs {
		names[doc.ID] = models.ListFromFields(doc.ID, doc.Fields).Name
	}
	return names
}

func TestCreateList(t *testing.T) {
	ctx := context.Background()

	t.Run("adds a trimmed list", func(t *testing.T) {
		p, s := setupPipeline(t)

		id, err := p.CreateList(ctx, "  Groceries ")
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.Equal(t, map[string]string{id: "Groceries"}, listNames(t, s))
	})

	t.Run("blank name makes no store call", func(t *testing.T) {
		p, s := setupPipeline(t)

		_, err := p.CreateList(ctx, "   ")
		assert.ErrorIs(t, err, ErrInvalidName)
		assert.Equal(t, 0, s.Calls(testutil.OpAdd))
	})

	t.Run("store failure is returned", func(t *testing.T) {
		p, s := setupPipeline(t)
		s.FailAlways(testutil.OpAdd, errUnavailable)

		_, err := p.CreateList(ctx, "Groceries")
		assert.ErrorIs(t, err, errUnavailable)
	})
}

func TestRenameList(t *testing.T) {
	ctx := context.Background()

	t.Run("updates only the name", func(t *testing.T) {
		p, s := setupPipeline(t)
		id, err := p.CreateList(ctx, "Groceries")
		require.NoError(t, err)
		_, err = p.AddItem(ctx, id, "Milk", "2", "l")
		require.NoError(t, err)

		require.NoError(t, p.RenameList(ctx, id, "Weekly"))

		assert.Equal(t, map[string]string{id: "Weekly"}, listNames(t, s))
		items, err := p.Items(ctx, id)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("missing list", func(t *testing.T) {
		p, _ := setupPipeline(t)

		err := p.RenameList(ctx, "nope", "Weekly")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("blank name makes no store call", func(t *testing.T) {
		p, s := setupPipeline(t)

		err := p.RenameList(ctx, "L1", "")
		assert.ErrorIs(t, err, ErrInvalidName)
		assert.Equal(t, 0, s.Calls(testutil.OpUpdate))
	})

	t.Run("rejects path-like ids", func(t *testing.T) {
		p, s := setupPipeline(t)

		err := p.RenameList(ctx, "L1/items/I1", "Weekly")
		assert.ErrorIs(t, err, ErrInvalidID)
		assert.Equal(t, 0, s.Calls(testutil.OpUpdate))
	})
}

func TestItems(t *testing.T) {
	ctx := context.Background()

	t.Run("add edit and delete", func(t *testing.T) {
		p, _ := setupPipeline(t)
		listID, err := p.CreateList(ctx, "Hardware")
		require.NoError(t, err)

		itemID, err := p.AddItem(ctx, listID, " Screws ", "50", "pcs")
		require.NoError(t, err)

		items, err := p.Items(ctx, listID)
		require.NoError(t, err)
		assert.Equal(t, []models.Item{{ID: itemID, Name: "Screws", Quantity: 50, Unit: "pcs"}}, items)

		require.NoError(t, p.EditItem(ctx, listID, itemID, "Nails", "20", ""))
		items, err = p.Items(ctx, listID)
		require.NoError(t, err)
		assert.Equal(t, []models.Item{{ID: itemID, Name: "Nails", Quantity: 20, Unit: ""}}, items)

		require.NoError(t, p.DeleteItem(ctx, listID, itemID))
		items, err = p.Items(ctx, listID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("edit leaves sibling items untouched", func(t *testing.T) {
		p, _ := setupPipeline(t)
		listID, err := p.CreateList(ctx, "Groceries")
		require.NoError(t, err)

		milk, err := p.AddItem(ctx, listID, "Milk", "2", "l")
		require.NoError(t, err)
		eggs, err := p.AddItem(ctx, listID, "Eggs", "12", "pcs")
		require.NoError(t, err)

		require.NoError(t, p.EditItem(ctx, listID, milk, "Oat milk", "1", ""))

		items, err := p.Items(ctx, listID)
		require.NoError(t, err)
		byID := make(map[string]models.Item, len(items))
		for _, item := range items {
			byID[item.ID] = item
		}
		require.Len(t, byID, 2)

		assert.Equal(t, "Oat milk", byID[milk].Name)
		assert.Equal(t, 1, byID[milk].Quantity)
		assert.Empty(t, byID[milk].Unit)

		assert.Equal(t, "Eggs", byID[eggs].Name)
		assert.Equal(t, 12, byID[eggs].Quantity)
		assert.Equal(t, "pcs", byID[eggs].Unit)
	})

	t.Run("invalid quantity makes no store call", func(t *testing.T) {
		p, s := setupPipeline(t)

		_, err := p.AddItem(ctx, "L1", "Milk", "a few", "")
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		err = p.EditItem(ctx, "L1", "I1", "Milk", "-1", "")
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		assert.Equal(t, 0, s.Calls(testutil.OpAdd))
		assert.Equal(t, 0, s.Calls(testutil.OpUpdate))
	})

	t.Run("editing a missing item", func(t *testing.T) {
		p, _ := setupPipeline(t)

		err := p.EditItem(ctx, "L1", "I1", "Milk", "1", "")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("deleting a missing item succeeds", func(t *testing.T) {
		p, _ := setupPipeline(t)

		assert.NoError(t, p.DeleteItem(ctx, "L1", "I1"))
	})
}

func TestDeleteList(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, p *Pipeline, items int) string {
		id, err := p.CreateList(ctx, "Party")
		require.NoError(t, err)
		for i := 0; i < items; i++ {
			_, err := p.AddItem(ctx, id, "Cups", "10", "")
			require.NoError(t, err)
		}
		return id
	}

	t.Run("deletes items then the list", func(t *testing.T) {
		p, s := setupPipeline(t)
		id := seed(t, p, 3)

		result, err := p.DeleteList(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, DeleteResult{ItemsTotal: 3, ItemsDeleted: 3}, result)
		assert.Equal(t, 4, s.Calls(testutil.OpDelete))

		assert.Empty(t, listNames(t, s))
		items, err := p.Items(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("empty list", func(t *testing.T) {
		p, s := setupPipeline(t)
		id := seed(t, p, 0)

		result, err := p.DeleteList(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, DeleteResult{}, result)
		assert.Empty(t, listNames(t, s))
	})

	t.Run("read failure deletes nothing", func(t *testing.T) {
		p, s := setupPipeline(t)
		id := seed(t, p, 2)
		s.FailAlways(testutil.OpGet, errUnavailable)

		_, err := p.DeleteList(ctx, id)

		var derr *DeleteError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, StageReadItems, derr.Stage)
		assert.NotErrorIs(t, err, ErrPartialDelete)
		assert.Equal(t, 0, s.Calls(testutil.OpDelete))
	})

	t.Run("item failure stops the cascade and keeps the list", func(t *testing.T) {
		p, s := setupPipeline(t)
		id := seed(t, p, 5)
		s.FailOn(testutil.OpDelete, 3, errUnavailable)

		result, err := p.DeleteList(ctx, id)

		assert.ErrorIs(t, err, ErrPartialDelete)
		assert.ErrorIs(t, err, errUnavailable)
		assert.Equal(t, DeleteResult{ItemsTotal: 5, ItemsDeleted: 2}, result)

		var derr *DeleteError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, StageDeleteItem, derr.Stage)
		assert.NotEmpty(t, derr.ItemID)

		assert.Contains(t, listNames(t, s), id)
		items, err := p.Items(ctx, id)
		require.NoError(t, err)
		assert.Len(t, items, 3)

		t.Run("a second delete finishes the cascade", func(t *testing.T) {
			result, err := p.DeleteList(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, DeleteResult{ItemsTotal: 3, ItemsDeleted: 3}, result)
			assert.NotContains(t, listNames(t, s), id)
		})
	})

	t.Run("list document failure leaves an empty list", func(t *testing.T) {
		p, s := setupPipeline(t)
		id := seed(t, p, 2)
		s.FailOn(testutil.OpDelete, 3, errUnavailable)

		result, err := p.DeleteList(ctx, id)

		var derr *DeleteError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, StageDeleteList, derr.Stage)
		assert.Equal(t, DeleteResult{ItemsTotal: 2, ItemsDeleted: 2}, result)
		assert.Contains(t, listNames(t, s), id)
	})
}

func TestShareList(t *testing.T) {
	p, s := setupPipeline(t)

	err := p.ShareList(context.Background(), "L1")

	assert.ErrorIs(t, err, ErrShareUnavailable)
	assert.Equal(t, 0, s.Calls(testutil.OpGet)+s.Calls(testutil.OpAdd)+s.Calls(testutil.OpUpdate)+s.Calls(testutil.OpDelete))
}
