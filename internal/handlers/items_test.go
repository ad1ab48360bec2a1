package handlers

import (
	"net/http"
	"testing"

	"shoppinglist-api/internal/models"
	"shoppinglist-api/internal/store"
	"shoppinglist-api/internal/testutil"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getItems(t *testing.T, api *testAPI, listID string) models.ItemsResponse {
	w := api.do(t, http.MethodGet, "/api/v1/lists/"+listID+"/items", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response models.ItemsResponse
	testutil.ParseJSONResponse(t, w, &response)
	return response
}

func TestGetItems(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		id := api.createList(t, "Groceries")

		w := api.do(t, http.MethodGet, "/api/v1/lists/"+id+"/items", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"listId":"`+id+`","data":[]}`, w.Body.String())
	})

	t.Run("malformed list id", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())

		w := api.do(t, http.MethodGet, "/api/v1/lists/abc/items", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_ID", api.errorCode(t, w).Code)
	})
}

func TestAddItem(t *testing.T) {
	t.Run("adds an item", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		listID := api.createList(t, "Groceries")

		itemID := api.addItem(t, listID, " Milk ", "2", "l")

		response := getItems(t, api, listID)
		assert.Equal(t, listID, response.ListID)
		assert.Equal(t, []models.Item{{ID: itemID, Name: "Milk", Quantity: 2, Unit: "l"}}, response.Data)
	})

	t.Run("unit is optional", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		listID := api.createList(t, "Groceries")

		api.addItem(t, listID, "Bread", "0", "")

		response := getItems(t, api, listID)
		require.Len(t, response.Data, 1)
		assert.Equal(t, 0, response.Data[0].Quantity)
		assert.Empty(t, response.Data[0].Unit)
	})

	invalid := []struct {
		name     string
		request  models.ItemRequest
		expected string
	}{
		{"blank name", models.ItemRequest{Name: " ", Quantity: "1"}, "INVALID_NAME"},
		{"text quantity", models.ItemRequest{Name: "Milk", Quantity: "two"}, "INVALID_QUANTITY"},
		{"negative quantity", models.ItemRequest{Name: "Milk", Quantity: "-1"}, "INVALID_QUANTITY"},
		{"fractional quantity", models.ItemRequest{Name: "Milk", Quantity: "1.5"}, "INVALID_QUANTITY"},
		{"empty quantity", models.ItemRequest{Name: "Milk"}, "INVALID_QUANTITY"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			api := setupAPI(t, store.NewMemoryStore())
			listID := api.createList(t, "Groceries")

			w := api.do(t, http.MethodPost, "/api/v1/lists/"+listID+"/items", tt.request)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.expected, api.errorCode(t, w).Code)
			assert.Empty(t, getItems(t, api, listID).Data)
		})
	}
}

func TestUpdateItem(t *testing.T) {
	t.Run("replaces the item", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		listID := api.createList(t, "Groceries")
		itemID := api.addItem(t, listID, "Milk", "2", "l")

		w := api.do(t, http.MethodPut, "/api/v1/lists/"+listID+"/items/"+itemID,
			models.ItemRequest{Name: "Oat milk", Quantity: "3", Unit: ""})

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []models.Item{{ID: itemID, Name: "Oat milk", Quantity: 3}}, getItems(t, api, listID).Data)
	})

	t.Run("other items keep their fields", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		listID := api.createList(t, "Groceries")
		milk := api.addItem(t, listID, "Milk", "2", "l")
		eggs := api.addItem(t, listID, "Eggs", "12", "pcs")
		bread := api.addItem(t, listID, "Bread", "1", "")

		w := api.do(t, http.MethodPut, "/api/v1/lists/"+listID+"/items/"+eggs,
			models.ItemRequest{Name: "Free-range eggs", Quantity: "6", Unit: ""})
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		byID := make(map[string]models.Item)
		for _, item := range getItems(t, api, listID).Data {
			byID[item.ID] = item
		}
		require.Len(t, byID, 3)

		assert.Equal(t, models.Item{ID: eggs, Name: "Free-range eggs", Quantity: 6}, byID[eggs])

		assert.Equal(t, "Milk", byID[milk].Name)
		assert.Equal(t, 2, byID[milk].Quantity)
		assert.Equal(t, "l", byID[milk].Unit)

		assert.Equal(t, "Bread", byID[bread].Name)
		assert.Equal(t, 1, byID[bread].Quantity)
		assert.Empty(t, byID[bread].Unit)
	})

	t.Run("unknown item", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		listID := api.createList(t, "Groceries")

		w := api.do(t, http.MethodPut, "/api/v1/lists/"+listID+"/items/"+ulid.Make().String(),
			models.ItemRequest{Name: "Milk", Quantity: "1"})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "ITEM_NOT_FOUND", api.errorCode(t, w).Code)
	})

	t.Run("invalid quantity leaves the item unchanged", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		listID := api.createList(t, "Groceries")
		itemID := api.addItem(t, listID, "Milk", "2", "l")

		w := api.do(t, http.MethodPut, "/api/v1/lists/"+listID+"/items/"+itemID,
			models.ItemRequest{Name: "Milk", Quantity: "lots"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 2, getItems(t, api, listID).Data[0].Quantity)
	})

	t.Run("malformed item id", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		listID := api.createList(t, "Groceries")

		w := api.do(t, http.MethodPut, "/api/v1/lists/"+listID+"/items/milk",
			models.ItemRequest{Name: "Milk", Quantity: "1"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_ID", api.errorCode(t, w).Code)
	})
}

func TestDeleteItem(t *testing.T) {
	t.Run("requires confirmation", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		listID := api.createList(t, "Groceries")
		itemID := api.addItem(t, listID, "Milk", "2", "l")

		w := api.do(t, http.MethodDelete, "/api/v1/lists/"+listID+"/items/"+itemID, nil)

		assert.Equal(t, http.StatusPreconditionRequired, w.Code)
		assert.Len(t, getItems(t, api, listID).Data, 1)
	})

	t.Run("deletes and is idempotent", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		listID := api.createList(t, "Groceries")
		itemID := api.addItem(t, listID, "Milk", "2", "l")
		path := "/api/v1/lists/" + listID + "/items/" + itemID + "?confirm=true"

		w := api.do(t, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, getItems(t, api, listID).Data)

		w = api.do(t, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
