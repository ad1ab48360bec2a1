package mutation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidName      = errors.New("name must not be empty")
	ErrInvalidQuantity  = errors.New("quantity must be a whole number of zero or more")
	ErrInvalidID        = errors.New("id must be a non-empty single path segment")
	ErrShareUnavailable = errors.New("sharing lists is not available yet")
	ErrPartialDelete    = errors.New("list delete stopped part way")
)

// Delete stages, in execution order
const (
	StageReadItems  = "read items"
	StageDeleteItem = "delete item"
	StageDeleteList = "delete list"
)

// DeleteResult reports how far a cascading delete got
type DeleteResult struct {
	ItemsTotal   int `json:"itemsTotal"`
	ItemsDeleted int `json:"itemsDeleted"`
}

// DeleteError describes a cascading delete that stopped at Stage.
// Anything past the read stage leaves the list partially deleted and matches
// ErrPartialDelete; calling DeleteList again finishes the cascade.
type DeleteError struct {
	ListID string
	Stage  string
	ItemID string
	DeleteResult
	Err error
}

func (e *DeleteError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("delete list %s: %s %s (%d/%d items deleted): %v",
			e.ListID, e.Stage, e.ItemID, e.ItemsDeleted, e.ItemsTotal, e.Err)
	}
	return fmt.Sprintf("delete list %s: %s (%d/%d items deleted): %v",
		e.ListID, e.Stage, e.ItemsDeleted, e.ItemsTotal, e.Err)
}

func (e *DeleteError) Unwrap() []error {
	if e.Partial() {
		return []error{ErrPartialDelete, e.Err}
	}
	return []error{e.Err}
}

// Partial reports whether the store was modified before the failure
func (e *DeleteError) Partial() bool {
	return e.Stage != StageReadItems
}
