package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid document or collection path")
	ErrClosed      = errors.New("store is closed")
)

// ListsCollection is the top-level collection holding shopping lists
const ListsCollection = "lists"

// itemsSegment names the item subcollection under each list document
const itemsSegment = "items"

// Fields holds the stored attributes of a document
type Fields map[string]interface{}

// Document is one document of a collection as observed at read time
type Document struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// Snapshot is a full delivery of a collection's documents, never a diff
type Snapshot struct {
	Collection string
	Documents  []Document
}

// SnapshotFunc receives every snapshot of a subscription, in store order
type SnapshotFunc func(Snapshot)

// ErrorFunc receives read failures of a subscription; the subscription stays open
type ErrorFunc func(error)

// Subscription is the handle returned by Subscribe.
// Unsubscribe may be called any number of times; only the first call has an effect.
type Subscription interface {
	ID() string
	Unsubscribe()
}

// Store defines the document store contract consumed by the sync and mutation layers
type Store interface {
	// Subscribe delivers an initial snapshot of the collection and a new one after every change
	Subscribe(collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (Subscription, error)
	// Get performs a one-shot read of a collection, ordered by document id
	Get(ctx context.Context, collection string) ([]Document, error)
	// Add creates a document with a store-assigned id
	Add(ctx context.Context, collection string, fields Fields) (string, error)
	// Update merges fields into an existing document
	Update(ctx context.Context, documentPath string, fields Fields) error
	// Delete removes a document; deleting a missing document is not an error
	Delete(ctx context.Context, documentPath string) error
	// Ping reports whether the store can serve requests
	Ping(ctx context.Context) error
	Close() error
}

// ItemsCollection returns the item subcollection path of a list
func ItemsCollection(listID string) string {
	return ListsCollection + "/" + listID + "/" + itemsSegment
}

// ListDocument returns the document path of a list
func ListDocument(listID string) string {
	return DocumentPath(ListsCollection, listID)
}

// ItemDocument returns the document path of an item
func ItemDocument(listID, itemID string) string {
	return DocumentPath(ItemsCollection(listID), itemID)
}

// DocumentPath joins a collection path and a document id
func DocumentPath(collection, id string) string {
	return collection + "/" + id
}

// ValidateCollection checks that path names a collection (odd number of non-empty segments)
func ValidateCollection(path string) error {
	segments, err := splitSegments(path)
	if err != nil {
		return err
	}
	if len(segments)%2 != 1 {
		return fmt.Errorf("%w: %q is not a collection path", ErrInvalidPath, path)
	}
	return nil
}

// SplitDocumentPath splits a document path into its collection path and document id
func SplitDocumentPath(path string) (string, string, error) {
	segments, err := splitSegments(path)
	if err != nil {
		return "", "", err
	}
	if len(segments)%2 != 0 {
		return "", "", fmt.Errorf("%w: %q is not a document path", ErrInvalidPath, path)
	}
	last := len(segments) - 1
	return strings.Join(segments[:last], "/"), segments[last], nil
}

func splitSegments(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	segments := strings.Split(path, "/")
	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, path)
		}
	}
	return segments, nil
}

// copyFields returns a shallow copy so callers never share maps with the store
func copyFields(f Fields) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
