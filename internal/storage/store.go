// Package storage persists the most recent backend snapshot per tenant so
// dashboards keep working when the finance backend is unreachable.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Snapshot kinds stored per tenant.
const (
	KindDashboard    = "dashboard"
	KindCards        = "cards"
	KindDebit        = "debit"
	KindInstallments = "installments"
)

var ErrNoSnapshot = errors.New("no snapshot for tenant")

type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save replaces the snapshot of the given kind for a tenant.
func (s *Store) Save(ctx context.Context, tenantID int64, kind string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (tenant_id, kind, payload, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (tenant_id, kind) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		tenantID, kind, string(payload), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Latest returns the stored snapshot of the given kind for a tenant.
// Returns ErrNoSnapshot when none has been saved yet.
func (s *Store) Latest(ctx context.Context, tenantID int64, kind string) ([]byte, time.Time, error) {
	var payload string
	var fetchedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT payload, fetched_at FROM snapshots
		WHERE tenant_id = ? AND kind = ?`,
		tenantID, kind).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load snapshot: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse snapshot timestamp: %w", err)
	}

	return []byte(payload), at, nil
}

// PurgeTenant removes every snapshot stored for a tenant.
func (s *Store) PurgeTenant(ctx context.Context, tenantID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE tenant_id = ?`, tenantID)
	if err != nil {
		return fmt.Errorf("purge snapshots: %w", err)
	}
	return nil
}
