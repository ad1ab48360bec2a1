package database

import (
	"os"

	"shoppinglist-api/internal/logging"
	"shoppinglist-api/internal/store"

	"gorm.io/gorm"
)

// OpenStoreFromEnv opens the document store selected by the environment.
// USE_MEMORY_STORAGE=true gives a process-local store and a nil *gorm.DB;
// otherwise the configured database is connected and migrated.
func OpenStoreFromEnv() (store.Store, *gorm.DB, error) {
	if os.Getenv("USE_MEMORY_STORAGE") == "true" {
		logging.Logger.Info("Using in-memory document store")
		return store.NewMemoryStore(), nil, nil
	}

	db, err := Connect(NewConfigFromEnv())
	if err != nil {
		return nil, nil, err
	}
	if err := AutoMigrate(db); err != nil {
		_ = Close(db)
		return nil, nil, err
	}

	logging.Logger.Info("Database document store initialized successfully")
	return store.NewGormStore(db, store.NewGormConfigFromEnv()), db, nil
}
