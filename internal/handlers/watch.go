package handlers

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"shoppinglist-api/internal/logging"
	"shoppinglist-api/internal/models"
	"shoppinglist-api/internal/realtime"
	"shoppinglist-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WatchConfig holds websocket timing settings
type WatchConfig struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	// ReadTimeout must exceed PingInterval; every pong extends it
	ReadTimeout time.Duration
}

// NewWatchConfigFromEnv creates a WatchConfig from environment variables
func NewWatchConfigFromEnv() *WatchConfig {
	return &WatchConfig{
		WriteTimeout: getEnvDuration("WS_WRITE_TIMEOUT", 10*time.Second),
		PingInterval: getEnvDuration("WS_PING_INTERVAL", 30*time.Second),
		ReadTimeout:  getEnvDuration("WS_READ_TIMEOUT", 60*time.Second),
	}
}

// WatchHandler streams live views over websockets
type WatchHandler struct {
	store     store.Store
	directory *realtime.Directory
	config    WatchConfig
	upgrader  websocket.Upgrader

	// hijacked connections outlive http.Server.Shutdown; closing done ends them
	done      chan struct{}
	closeOnce sync.Once
}

// NewWatchHandler creates a new watch handler
func NewWatchHandler(s store.Store, directory *realtime.Directory, cfg *WatchConfig) *WatchHandler {
	if cfg == nil {
		cfg = NewWatchConfigFromEnv()
	}
	return &WatchHandler{
		store:     s,
		directory: directory,
		config:    *cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// any origin may watch
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		done: make(chan struct{}),
	}
}

// Close ends every open watch stream
func (h *WatchHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// WatchLists handles GET /lists/watch
// @Summary Watch all shopping lists
// @Description Upgrades to a websocket that receives the list view as JSON on every change
// @Tags Watch
// @Produce json
// @Success 101 {object} models.ListsResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /lists/watch [get]
func (h *WatchHandler) WatchLists(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		logging.Logger.WithField("error", err.Error()).Debug("Websocket upgrade failed")
		return
	}

	views, cancel := h.directory.Watch()
	defer cancel()

	stream(c.Request.Context(), h.done, conn, h.config, views, func(lists []models.List) interface{} {
		response := models.ListsResponse{Data: lists, Healthy: true}
		if err := h.directory.LastError(); err != nil {
			response.Healthy = false
			response.LastError = err.Error()
		}
		return response
	})
}

// WatchItems handles GET /lists/:listId/items/watch.
// The list detail sync lives as long as the connection and reports counts to the directory.
// @Summary Watch the items of a list
// @Description Upgrades to a websocket that receives the item view as JSON on every change
// @Tags Watch
// @Produce json
// @Param listId path string true "List ID"
// @Success 101 {object} models.ItemsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /lists/{listId}/items/watch [get]
func (h *WatchHandler) WatchItems(c *gin.Context) {
	listID := c.Param("listId")

	detail, err := realtime.OpenDetail(h.store, listID, h.directory)
	if err != nil {
		respondError(c, err, "LIST_NOT_FOUND", "Failed to watch items")
		return
	}
	defer detail.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Logger.WithField("error", err.Error()).Debug("Websocket upgrade failed")
		return
	}

	views, cancel := detail.Watch()
	defer cancel()

	stream(c.Request.Context(), h.done, conn, h.config, views, func(items []models.Item) interface{} {
		return models.ItemsResponse{ListID: listID, Data: items}
	})
}

// stream writes every view received on views as a JSON text frame until the
// client goes away, the view source closes, ctx ends or done is closed. It owns conn.
func stream[T any](ctx context.Context, done <-chan struct{}, conn *websocket.Conn, cfg WatchConfig, views <-chan T, frame func(T) interface{}) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	remote := conn.RemoteAddr().String()
	logging.Logger.WithField("remote", remote).Debug("Watch stream opened")
	defer logging.Logger.WithField("remote", remote).Debug("Watch stream closed")

	conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	// reader: client frames are ignored, a read error means the peer is gone
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(cfg.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(cfg.WriteTimeout))
			return
		case view, ok := <-views:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "view closed"))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := conn.WriteJSON(frame(view)); err != nil {
				// a write deadline timeout cannot be recovered
				logging.Logger.WithFields(logrus.Fields{
					"remote": remote,
					"error":  err.Error(),
				}).Debug("Watch stream write failed")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(cfg.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
