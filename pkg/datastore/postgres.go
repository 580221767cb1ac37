package datastore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/xob0t/memocard/pkg/settings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresSlot stores each plugin's blob as one row of plugin_data.
type PostgresSlot struct {
	db       *sql.DB
	pluginID string
}

var _ settings.DataSlot = (*PostgresSlot)(nil)

// NewPostgresSlot connects to databaseURL, applies pending migrations and
// returns the slot for pluginID.
func NewPostgresSlot(databaseURL, pluginID string) (*PostgresSlot, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return NewPostgresSlotWithDB(db, pluginID), nil
}

// NewPostgresSlotWithDB wraps an already-migrated connection.
func NewPostgresSlotWithDB(db *sql.DB, pluginID string) *PostgresSlot {
	return &PostgresSlot{db: db, pluginID: pluginID}
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// LoadData returns the stored blob, or nil if the plugin has none.
func (p *PostgresSlot) LoadData(ctx context.Context) ([]byte, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT data FROM plugin_data WHERE plugin_id = $1`, p.pluginID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select plugin data: %w", err)
	}
	return data, nil
}

// SaveData upserts the blob.
func (p *PostgresSlot) SaveData(ctx context.Context, data []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO plugin_data (plugin_id, data)
		VALUES ($1, $2)
		ON CONFLICT (plugin_id) DO UPDATE SET data = $2, updated_at = NOW()`,
		p.pluginID, data,
	)
	if err != nil {
		return fmt.Errorf("upsert plugin data: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (p *PostgresSlot) Close() error {
	return p.db.Close()
}
