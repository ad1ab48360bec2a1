package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shoppinglist-api/internal/models"
	"shoppinglist-api/internal/store"
	"shoppinglist-api/internal/testutil"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWatch(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(server.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames into v until match accepts one
func readUntil[T any](t *testing.T, conn *websocket.Conn, match func(T) bool) T {
	t.Helper()
	deadline := time.Now().Add(testutil.WaitTimeout)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var v T
		require.NoError(t, conn.ReadJSON(&v))
		if match(v) {
			return v
		}
	}
}

func TestWatchLists(t *testing.T) {
	t.Run("streams the view as it changes", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		server := httptest.NewServer(api.router)
		defer server.Close()

		conn := dialWatch(t, server, "/api/v1/lists/watch")
		first := readUntil(t, conn, func(models.ListsResponse) bool { return true })
		assert.Empty(t, first.Data)
		assert.True(t, first.Healthy)

		id := api.createList(t, "Groceries")
		readUntil(t, conn, func(r models.ListsResponse) bool {
			return len(r.Data) == 1 && r.Data[0].ID == id && r.Data[0].Name == "Groceries"
		})

		api.do(t, http.MethodPut, "/api/v1/lists/"+id, models.RenameListRequest{Name: "Food"})
		readUntil(t, conn, func(r models.ListsResponse) bool {
			return len(r.Data) == 1 && r.Data[0].Name == "Food"
		})
	})

	t.Run("server close ends the stream", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		server := httptest.NewServer(api.router)
		defer server.Close()

		conn := dialWatch(t, server, "/api/v1/lists/watch")
		readUntil(t, conn, func(models.ListsResponse) bool { return true })

		api.watch.Close()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(testutil.WaitTimeout)))
		_, _, err := conn.ReadMessage()
		var closeErr *websocket.CloseError
		require.True(t, errors.As(err, &closeErr), "expected close frame, got %v", err)
		assert.Equal(t, websocket.CloseGoingAway, closeErr.Code)
	})

	t.Run("plain HTTP is rejected", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())

		w := api.do(t, http.MethodGet, "/api/v1/lists/watch", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWatchItems(t *testing.T) {
	t.Run("streams items and pushes counts to the directory", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		server := httptest.NewServer(api.router)
		defer server.Close()
		listID := api.createList(t, "Groceries")
		api.waitForList(t, listID, "Groceries")

		conn := dialWatch(t, server, "/api/v1/lists/"+listID+"/items/watch")
		first := readUntil(t, conn, func(models.ItemsResponse) bool { return true })
		assert.Equal(t, listID, first.ListID)
		assert.Empty(t, first.Data)

		itemID := api.addItem(t, listID, "Milk", "2", "l")
		frame := readUntil(t, conn, func(r models.ItemsResponse) bool { return len(r.Data) == 1 })
		assert.Equal(t, models.Item{ID: itemID, Name: "Milk", Quantity: 2, Unit: "l"}, frame.Data[0])

		testutil.Eventually(t, func() bool {
			view := api.directory.View()
			return len(view) == 1 && view[0].ItemsCount == 1
		})
	})

	t.Run("disconnect releases the item subscription", func(t *testing.T) {
		s := store.NewMemoryStore()
		api := setupAPI(t, s)
		server := httptest.NewServer(api.router)
		defer server.Close()
		listID := api.createList(t, "Groceries")
		baseline := s.Subscribers()

		conn := dialWatch(t, server, "/api/v1/lists/"+listID+"/items/watch")
		readUntil(t, conn, func(models.ItemsResponse) bool { return true })
		assert.Equal(t, baseline+1, s.Subscribers())

		require.NoError(t, conn.Close())

		testutil.Eventually(t, func() bool { return s.Subscribers() == baseline })
	})

	t.Run("malformed list id fails before upgrading", func(t *testing.T) {
		api := setupAPI(t, store.NewMemoryStore())
		server := httptest.NewServer(api.router)
		defer server.Close()

		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/lists/nope/items/watch"
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)

		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
