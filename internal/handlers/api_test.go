package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shoppinglist-api/internal/models"
	"shoppinglist-api/internal/mutation"
	"shoppinglist-api/internal/realtime"
	"shoppinglist-api/internal/store"
	"shoppinglist-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router    *gin.Engine
	store     store.Store
	directory *realtime.Directory
	watch     *WatchHandler
}

// setupAPI serves the full route table over s with a synced directory
func setupAPI(t *testing.T, s store.Store) *testAPI {
	gin.SetMode(gin.TestMode)

	directory := realtime.NewDirectory(s, nil, nil)
	require.NoError(t, directory.Start())
	testutil.Eventually(t, directory.Ready)

	pipeline := mutation.NewPipeline(s)
	watch := NewWatchHandler(s, directory, &WatchConfig{
		WriteTimeout: time.Second,
		PingInterval: 50 * time.Millisecond,
		ReadTimeout:  time.Second,
	})

	router := gin.New()
	RegisterRoutes(router, Routes{
		Lists:  NewListHandler(pipeline, directory),
		Items:  NewItemHandler(pipeline),
		Watch:  watch,
		Health: NewHealthHandler(s, directory, nil),
	})

	t.Cleanup(func() {
		watch.Close()
		directory.Close()
		_ = s.Close()
	})

	return &testAPI{router: router, store: s, directory: directory, watch: watch}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, testutil.MakeJSONRequest(t, method, path, body))
	return w
}

func (a *testAPI) doRaw(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) createList(t *testing.T, name string) string {
	w := a.do(t, http.MethodPost, "/api/v1/lists", models.CreateListRequest{Name: name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.CreatedResponse
	testutil.ParseJSONResponse(t, w, &created)
	require.NotEmpty(t, created.ID)
	return created.ID
}

func (a *testAPI) addItem(t *testing.T, listID, name, quantity, unit string) string {
	w := a.do(t, http.MethodPost, "/api/v1/lists/"+listID+"/items",
		models.ItemRequest{Name: name, Quantity: quantity, Unit: unit})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.CreatedResponse
	testutil.ParseJSONResponse(t, w, &created)
	return created.ID
}

// waitForList waits until the directory shows the list with the given name
func (a *testAPI) waitForList(t *testing.T, listID, name string) {
	testutil.Eventually(t, func() bool {
		for _, list := range a.directory.View() {
			if list.ID == listID && list.Name == name {
				return true
			}
		}
		return false
	}, "list %s never appeared as %q", listID, name)
}

func (a *testAPI) errorCode(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	var response models.ErrorResponse
	testutil.ParseJSONResponse(t, w, &response)
	return response
}
