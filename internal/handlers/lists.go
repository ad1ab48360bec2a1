package handlers

import (
	"net/http"

	"shoppinglist-api/internal/models"
	"shoppinglist-api/internal/mutation"
	"shoppinglist-api/internal/realtime"

	"github.com/gin-gonic/gin"
)

// ListHandler handles shopping list operations
type ListHandler struct {
	pipeline  *mutation.Pipeline
	directory *realtime.Directory
}

// NewListHandler creates a new list handler
func NewListHandler(pipeline *mutation.Pipeline, directory *realtime.Directory) *ListHandler {
	return &ListHandler{pipeline: pipeline, directory: directory}
}

// GetAllLists returns the live list directory view
// @Summary Get all shopping lists
// @Description Returns every list with its item count, as last synced from the store
// @Tags Lists
// @Produce json
// @Success 200 {object} models.ListsResponse
// @Router /lists [get]
func (h *ListHandler) GetAllLists(c *gin.Context) {
	response := models.ListsResponse{
		Data:    h.directory.View(),
		Healthy: true,
	}
	if err := h.directory.LastError(); err != nil {
		response.Healthy = false
		response.LastError = err.Error()
	}

	c.JSON(http.StatusOK, response)
}

// GetListByID returns one list from the directory view
// @Summary Get a shopping list
// @Description Returns a single list with its item count
// @Tags Lists
// @Produce json
// @Param listId path string true "List ID"
// @Success 200 {object} models.List
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /lists/{listId} [get]
func (h *ListHandler) GetListByID(c *gin.Context) {
	listID := c.Param("listId")
	for _, list := range h.directory.View() {
		if list.ID == listID {
			c.JSON(http.StatusOK, list)
			return
		}
	}

	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Code:    "LIST_NOT_FOUND",
		Message: "The requested shopping list was not found",
	})
}

// CreateList handles POST /lists
// @Summary Create a shopping list
// @Description Create a new list with a trimmed, non-empty name
// @Tags Lists
// @Accept json
// @Produce json
// @Param request body models.CreateListRequest true "List details"
// @Success 201 {object} models.CreatedResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /lists [post]
func (h *ListHandler) CreateList(c *gin.Context) {
	var req models.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c, err)
		return
	}

	id, err := h.pipeline.CreateList(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err, "LIST_NOT_FOUND", "Failed to create list")
		return
	}

	c.JSON(http.StatusCreated, models.CreatedResponse{ID: id})
}

// RenameList handles PUT /lists/:listId
// @Summary Rename a shopping list
// @Tags Lists
// @Accept json
// @Param listId path string true "List ID"
// @Param request body models.RenameListRequest true "New name"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /lists/{listId} [put]
func (h *ListHandler) RenameList(c *gin.Context) {
	var req models.RenameListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c, err)
		return
	}

	if err := h.pipeline.RenameList(c.Request.Context(), c.Param("listId"), req.Name); err != nil {
		respondError(c, err, "LIST_NOT_FOUND", "Failed to rename list")
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteList handles DELETE /lists/:listId?confirm=true
// @Summary Delete a shopping list
// @Description Deletes every item of the list, then the list itself. Repeating a partial delete finishes it.
// @Tags Lists
// @Produce json
// @Param listId path string true "List ID"
// @Param confirm query bool true "Must be true"
// @Success 200 {object} mutation.DeleteResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 428 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /lists/{listId} [delete]
func (h *ListHandler) DeleteList(c *gin.Context) {
	if !confirmed(c) {
		return
	}

	result, err := h.pipeline.DeleteList(c.Request.Context(), c.Param("listId"))
	if err != nil {
		respondError(c, err, "LIST_NOT_FOUND", "Failed to delete list")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ShareList handles POST /lists/:listId/share
// @Summary Share a shopping list
// @Description Reserved; always answers 501 for a valid list ID
// @Tags Lists
// @Produce json
// @Param listId path string true "List ID"
// @Failure 400 {object} models.ErrorResponse
// @Failure 501 {object} models.ErrorResponse
// @Router /lists/{listId}/share [post]
func (h *ListHandler) ShareList(c *gin.Context) {
	err := h.pipeline.ShareList(c.Request.Context(), c.Param("listId"))
	respondError(c, err, "LIST_NOT_FOUND", "Failed to share list")
}
