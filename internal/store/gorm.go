package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentRecord is the row layout of the documents table
type DocumentRecord struct {
	Collection string            `gorm:"primaryKey;size:512"`
	ID         string            `gorm:"primaryKey;size:26"`
	Fields     datatypes.JSONMap `gorm:"not null"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime"`
}

// TableName pins the table name shared with the SQL migrations
func (DocumentRecord) TableName() string {
	return "documents"
}

// GormConfig holds the database store settings
type GormConfig struct {
	// PollInterval re-reads subscribed collections to pick up writes made by other processes.
	// Zero disables polling; writes made through this store are always delivered immediately.
	PollInterval time.Duration
}

// NewGormConfigFromEnv creates a GormConfig from environment variables
func NewGormConfigFromEnv() *GormConfig {
	interval := 5 * time.Second
	if value := os.Getenv("STORE_POLL_INTERVAL"); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed >= 0 {
			interval = parsed
		}
	}
	return &GormConfig{PollInterval: interval}
}

// GormStore implements the document store on a SQL database with GORM
type GormStore struct {
	db  *gorm.DB
	hub *hub
}

// NewGormStore creates a new database-backed store instance
func NewGormStore(db *gorm.DB, cfg *GormConfig) *GormStore {
	if cfg == nil {
		cfg = &GormConfig{}
	}
	s := &GormStore{db: db}
	s.hub = newHub(s.load, cfg.PollInterval)
	return s
}

// Subscribe registers a snapshot listener on a collection
func (s *GormStore) Subscribe(collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (Subscription, error) {
	sub, err := s.hub.subscribe(collection, onSnapshot, onError)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Get returns all documents of a collection ordered by id
func (s *GormStore) Get(ctx context.Context, collection string) ([]Document, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	return s.load(ctx, collection)
}

func (s *GormStore) load(ctx context.Context, collection string) ([]Document, error) {
	var records []DocumentRecord
	if err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, Document{ID: r.ID, Fields: Fields(r.Fields)})
	}
	return docs, nil
}

// Add inserts a new document and returns its id
func (s *GormStore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	if err := ValidateCollection(collection); err != nil {
		return "", err
	}

	record := &DocumentRecord{
		Collection: collection,
		ID:         ulid.Make().String(),
		Fields:     datatypes.JSONMap(copyFields(fields)),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return "", fmt.Errorf("add to %s: %w", collection, err)
	}

	s.hub.notify(collection)
	return record.ID, nil
}

// Update merges fields into an existing document
func (s *GormStore) Update(ctx context.Context, documentPath string, fields Fields) error {
	collection, id, err := SplitDocumentPath(documentPath)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record DocumentRecord
		if err := tx.Where("collection = ? AND id = ?", collection, id).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, documentPath)
			}
			return err
		}

		merged := copyFields(Fields(record.Fields))
		for k, v := range fields {
			merged[k] = v
		}
		return tx.Model(&DocumentRecord{}).
			Where("collection = ? AND id = ?", collection, id).
			Updates(map[string]interface{}{
				"fields":     datatypes.JSONMap(merged),
				"updated_at": time.Now(),
			}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("update %s: %w", documentPath, err)
	}

	s.hub.notify(collection)
	return nil
}

// Delete removes a document if it exists
func (s *GormStore) Delete(ctx context.Context, documentPath string) error {
	collection, id, err := SplitDocumentPath(documentPath)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&DocumentRecord{})
	if result.Error != nil {
		return fmt.Errorf("delete %s: %w", documentPath, result.Error)
	}

	if result.RowsAffected > 0 {
		s.hub.notify(collection)
	}
	return nil
}

// Ping checks database connectivity
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DB exposes the underlying connection for health reporting
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// Close cancels all subscriptions. The database connection is owned by the caller.
func (s *GormStore) Close() error {
	s.hub.close()
	return nil
}
