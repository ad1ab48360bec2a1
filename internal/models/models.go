package models

import (
	"fmt"
	"math"
	"strconv"
)

// Document field names shared by the store and the sync layer
const (
	FieldName     = "name"
	FieldQuantity = "quantity"
	FieldUnit     = "unit"
)

// List is the local projection of a shopping list document.
// ItemsCount is derived from the item subcollection and never stored on the list document.
type List struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ItemsCount int    `json:"itemsCount"`
}

// Item is a line item owned by exactly one list
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

// ListFields returns the document fields stored for a list
func ListFields(name string) map[string]interface{} {
	return map[string]interface{}{FieldName: name}
}

// ItemFields returns the document fields stored for an item
func ItemFields(name string, quantity int, unit string) map[string]interface{} {
	return map[string]interface{}{
		FieldName:     name,
		FieldQuantity: quantity,
		FieldUnit:     unit,
	}
}

// ListFromFields projects a list document. Unknown or mistyped fields are left zero.
func ListFromFields(id string, fields map[string]interface{}) List {
	name, _ := fields[FieldName].(string)
	return List{ID: id, Name: name}
}

// ItemFromFields projects an item document
func ItemFromFields(id string, fields map[string]interface{}) Item {
	name, _ := fields[FieldName].(string)
	unit, _ := fields[FieldUnit].(string)
	return Item{
		ID:       id,
		Name:     name,
		Quantity: toInt(fields[FieldQuantity]),
		Unit:     unit,
	}
}

// toInt normalizes the numeric encodings produced by the stores.
// JSON-backed stores hand back float64, the memory store keeps int.
func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	case fmt.Stringer:
		if parsed, err := strconv.Atoi(n.String()); err == nil {
			return parsed
		}
	}
	return 0
}

func floatToInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// CreateListRequest represents the request to create a shopping list
type CreateListRequest struct {
	Name string `json:"name"`
}

// RenameListRequest represents the request to rename a shopping list
type RenameListRequest struct {
	Name string `json:"name"`
}

// ItemRequest represents the request to add or replace an item.
// Quantity is the user-facing text and is parsed by the mutation pipeline.
type ItemRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// CreatedResponse is returned after a document has been added
type CreatedResponse struct {
	ID string `json:"id"`
}

// ListsResponse wraps the current directory view
type ListsResponse struct {
	Data      []List `json:"data"`
	Healthy   bool   `json:"healthy"`
	LastError string `json:"lastError,omitempty"`
}

// ItemsResponse wraps an item view for one list
type ItemsResponse struct {
	ListID string `json:"listId"`
	Data   []Item `json:"data"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
