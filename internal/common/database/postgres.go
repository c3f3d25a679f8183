// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nexsupply-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

const leadsTableDDL = `CREATE TABLE IF NOT EXISTS leads (
	id                UUID PRIMARY KEY,
	created_at        TIMESTAMPTZ NOT NULL,
	name              TEXT NOT NULL,
	work_email        TEXT NOT NULL,
	company           TEXT NOT NULL,
	use_case          TEXT NOT NULL,
	lead_source       TEXT,
	tier              CHAR(1) NOT NULL,
	queue             TEXT NOT NULL,
	sla_hours         DOUBLE PRECISION NOT NULL,
	opportunity_score DOUBLE PRECISION NOT NULL,
	email_type        TEXT NOT NULL,
	analysis          JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS leads_tier_created_idx ON leads (tier, created_at DESC);`

// EnsureLeadsTable creates the leads table when it does not exist.
func (c *PostgresClient) EnsureLeadsTable(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, leadsTableDDL); err != nil {
		return fmt.Errorf("create leads table: %w", err)
	}
	return nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
