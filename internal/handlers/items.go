package handlers

import (
	"net/http"

	"shoppinglist-api/internal/models"
	"shoppinglist-api/internal/mutation"

	"github.com/gin-gonic/gin"
)

// ItemHandler handles item operations within a list
type ItemHandler struct {
	pipeline *mutation.Pipeline
}

// NewItemHandler creates a new item handler
func NewItemHandler(pipeline *mutation.Pipeline) *ItemHandler {
	return &ItemHandler{pipeline: pipeline}
}

// GetItems handles GET /lists/:listId/items
// @Summary Get the items of a list
// @Tags Items
// @Produce json
// @Param listId path string true "List ID"
// @Success 200 {object} models.ItemsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /lists/{listId}/items [get]
func (h *ItemHandler) GetItems(c *gin.Context) {
	listID := c.Param("listId")

	items, err := h.pipeline.Items(c.Request.Context(), listID)
	if err != nil {
		respondError(c, err, "LIST_NOT_FOUND", "Failed to retrieve items")
		return
	}

	c.JSON(http.StatusOK, models.ItemsResponse{ListID: listID, Data: items})
}

// AddItem handles POST /lists/:listId/items
// @Summary Add an item
// @Description Add an item; quantity is a whole number of zero or more given as text, unit is optional
// @Tags Items
// @Accept json
// @Produce json
// @Param listId path string true "List ID"
// @Param request body models.ItemRequest true "Item details"
// @Success 201 {object} models.CreatedResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /lists/{listId}/items [post]
func (h *ItemHandler) AddItem(c *gin.Context) {
	var req models.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c, err)
		return
	}

	id, err := h.pipeline.AddItem(c.Request.Context(), c.Param("listId"), req.Name, req.Quantity, req.Unit)
	if err != nil {
		respondError(c, err, "LIST_NOT_FOUND", "Failed to add item")
		return
	}

	c.JSON(http.StatusCreated, models.CreatedResponse{ID: id})
}

// UpdateItem handles PUT /lists/:listId/items/:itemId
// @Summary Edit an item
// @Description Replaces name, quantity and unit of one item
// @Tags Items
// @Accept json
// @Param listId path string true "List ID"
// @Param itemId path string true "Item ID"
// @Param request body models.ItemRequest true "Item details"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /lists/{listId}/items/{itemId} [put]
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	var req models.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c, err)
		return
	}

	err := h.pipeline.EditItem(c.Request.Context(), c.Param("listId"), c.Param("itemId"),
		req.Name, req.Quantity, req.Unit)
	if err != nil {
		respondError(c, err, "ITEM_NOT_FOUND", "Failed to update item")
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteItem handles DELETE /lists/:listId/items/:itemId?confirm=true
// @Summary Delete an item
// @Tags Items
// @Param listId path string true "List ID"
// @Param itemId path string true "Item ID"
// @Param confirm query bool true "Must be true"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 428 {object} models.ErrorResponse
// @Router /lists/{listId}/items/{itemId} [delete]
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	if !confirmed(c) {
		return
	}

	if err := h.pipeline.DeleteItem(c.Request.Context(), c.Param("listId"), c.Param("itemId")); err != nil {
		respondError(c, err, "ITEM_NOT_FOUND", "Failed to delete item")
		return
	}

	c.Status(http.StatusNoContent)
}
