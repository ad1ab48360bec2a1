package handlers

import (
	"shoppinglist-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Routes bundles the handlers served by the API
type Routes struct {
	Lists  *ListHandler
	Items  *ItemHandler
	Watch  *WatchHandler
	Health *HealthHandler

	// WatchLimiter runs before both watch endpoints; nil disables it
	WatchLimiter gin.HandlerFunc
}

// RegisterRoutes mounts the API under /api/v1 and the health probes under /health
func RegisterRoutes(router *gin.Engine, r Routes) {
	watchLimiter := r.WatchLimiter
	if watchLimiter == nil {
		watchLimiter = func(c *gin.Context) { c.Next() }
	}
	listID := middleware.DocumentIDValidator("listId")
	itemID := middleware.DocumentIDValidator("listId", "itemId")

	v1 := router.Group("/api/v1")
	{
		lists := v1.Group("/lists")
		{
			lists.GET("", r.Lists.GetAllLists)
			lists.POST("", r.Lists.CreateList)
			lists.GET("/watch", watchLimiter, r.Watch.WatchLists)

			lists.GET("/:listId", listID, r.Lists.GetListByID)
			lists.PUT("/:listId", listID, r.Lists.RenameList)
			lists.DELETE("/:listId", listID, r.Lists.DeleteList)
			lists.POST("/:listId/share", listID, r.Lists.ShareList)

			lists.GET("/:listId/items", listID, r.Items.GetItems)
			lists.POST("/:listId/items", listID, r.Items.AddItem)
			lists.GET("/:listId/items/watch", listID, watchLimiter, r.Watch.WatchItems)
			lists.PUT("/:listId/items/:itemId", itemID, r.Items.UpdateItem)
			lists.DELETE("/:listId/items/:itemId", itemID, r.Items.DeleteItem)
		}
	}

	health := router.Group("/health")
	{
		health.GET("", r.Health.BasicHealth)
		health.GET("/live", r.Health.LivenessProbe)
		health.GET("/ready", r.Health.ReadinessProbe)
		health.GET("/detailed", r.Health.DetailedHealth)
	}
}
