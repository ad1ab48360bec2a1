package handlers

import (
	"errors"
	"net/http"

	"shoppinglist-api/internal/models"
	"shoppinglist-api/internal/mutation"
	"shoppinglist-api/internal/store"

	"github.com/gin-gonic/gin"
)

// respondError maps pipeline and store errors to an ErrorResponse.
// notFoundCode names the document kind the route addresses.
func respondError(c *gin.Context, err error, notFoundCode, fallback string) {
	var deleteErr *mutation.DeleteError

	switch {
	case errors.Is(err, mutation.ErrInvalidName):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    "INVALID_NAME",
			Message: "Name must not be empty",
		})
	case errors.Is(err, mutation.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    "INVALID_QUANTITY",
			Message: "Quantity must be a whole number of zero or more",
			Details: map[string]interface{}{"error": err.Error()},
		})
	case errors.Is(err, mutation.ErrInvalidID), errors.Is(err, store.ErrInvalidPath):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    "INVALID_ID",
			Message: "Invalid list or item ID",
		})
	case errors.Is(err, mutation.ErrShareUnavailable):
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{
			Code:    "SHARE_UNAVAILABLE",
			Message: "Sharing lists is not available yet",
		})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Code:    notFoundCode,
			Message: "The requested document was not found",
		})
	case errors.As(err, &deleteErr) && deleteErr.Partial():
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    "PARTIAL_DELETE",
			Message: "The list was only partially deleted; repeat the delete to finish it",
			Details: map[string]interface{}{
				"itemsTotal":   deleteErr.ItemsTotal,
				"itemsDeleted": deleteErr.ItemsDeleted,
				"stage":        deleteErr.Stage,
			},
		})
	case errors.Is(err, store.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Code:    "STORE_UNAVAILABLE",
			Message: "The document store is shutting down",
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: fallback,
		})
	}
}

func respondInvalidInput(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Code:    "INVALID_INPUT",
		Message: "Invalid request body",
		Details: map[string]interface{}{"error": err.Error()},
	})
}

// confirmed reports whether a destructive request carries confirm=true,
// answering 428 when it does not
func confirmed(c *gin.Context) bool {
	if c.Query("confirm") == "true" {
		return true
	}
	c.JSON(http.StatusPreconditionRequired, models.ErrorResponse{
		Code:    "CONFIRMATION_REQUIRED",
		Message: "Deleting requires confirm=true",
	})
	return false
}
