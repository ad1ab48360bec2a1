package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"

	"shoppinglist-api/internal/database"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // PostgreSQL driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the documents schema to a PostgreSQL database
type Migrator struct {
	migrate *migrate.Migrate
	db      *sql.DB
}

// Status describes the schema version of the target database
type Status struct {
	Version uint
	Dirty   bool
	Applied bool // false when no migration has run yet
}

// New creates a Migrator for the given PostgreSQL URL
func New(databaseURL string) (*Migrator, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{migrate: m, db: db}, nil
}

// NewFromEnv creates a Migrator using the same DB_* variables as the server
func NewFromEnv() (*Migrator, error) {
	cfg := database.NewConfigFromEnv()
	if cfg.Driver != database.DriverPostgres {
		return nil, fmt.Errorf("migrations target postgres, DB_DRIVER is %q (sqlite schemas are created by AutoMigrate)", cfg.Driver)
	}
	return New(DatabaseURL(cfg))
}

// DatabaseURL renders a database config as a postgres:// URL
func DatabaseURL(cfg *database.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
	}
	return u.String()
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	return ignoreNoChange(m.migrate.Up(), "apply migrations")
}

// Down rolls back a single migration
func (m *Migrator) Down() error {
	return ignoreNoChange(m.migrate.Steps(-1), "roll back migration")
}

// Steps runs n migrations (positive = up, negative = down)
func (m *Migrator) Steps(n int) error {
	return ignoreNoChange(m.migrate.Steps(n), fmt.Sprintf("run %d migration steps", n))
}

// Status reports the current schema version
func (m *Migrator) Status() (Status, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("failed to read migration version: %w", err)
	}
	return Status{Version: version, Dirty: dirty, Applied: true}, nil
}

// Force sets the version without running migrations, for recovering a dirty state
func (m *Migrator) Force(version int) error {
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force migration version: %w", err)
	}
	return nil
}

// Close releases the database connection
func (m *Migrator) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func ignoreNoChange(err error, action string) error {
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
