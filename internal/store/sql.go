package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/config"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

// SQLStore persists check state in a relational database. Both the postgres
// and sqlite3 drivers are supported via the config driver/dsn pair.
type SQLStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS contact_checks (
	site            TEXT PRIMARY KEY,
	status          TEXT NOT NULL,
	contact_url     TEXT NOT NULL DEFAULT '',
	has_form        BOOLEAN NOT NULL DEFAULT FALSE,
	message         TEXT NOT NULL DEFAULT '',
	checked_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS contact_check_history (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	site            TEXT NOT NULL,
	status          TEXT NOT NULL,
	contact_url     TEXT NOT NULL DEFAULT '',
	message         TEXT NOT NULL DEFAULT '',
	checked_at      TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_site ON contact_check_history(site, checked_at);
`

// postgres has no AUTOINCREMENT keyword; swap in a serial column there.
const schemaPostgres = `
CREATE TABLE IF NOT EXISTS contact_checks (
	site            TEXT PRIMARY KEY,
	status          TEXT NOT NULL,
	contact_url     TEXT NOT NULL DEFAULT '',
	has_form        BOOLEAN NOT NULL DEFAULT FALSE,
	message         TEXT NOT NULL DEFAULT '',
	checked_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS contact_check_history (
	id              BIGSERIAL PRIMARY KEY,
	site            TEXT NOT NULL,
	status          TEXT NOT NULL,
	contact_url     TEXT NOT NULL DEFAULT '',
	message         TEXT NOT NULL DEFAULT '',
	checked_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_site ON contact_check_history(site, checked_at);
`

// NewSQLStore opens the database and optionally applies the schema.
func NewSQLStore(cfg config.SQLConfig) (*SQLStore, error) {
	if cfg.Driver == "" || cfg.DSN == "" {
		return nil, errors.New("sql config missing driver or dsn")
	}
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open sql connection: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime.Duration > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime.Duration)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sql connection: %w", err)
	}

	if cfg.AutoMigrate {
		ddl := schema
		if cfg.Driver == "postgres" {
			ddl = schemaPostgres
		}
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &SQLStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) SaveCheck(ctx context.Context, rec types.CheckRecord) error {
	const q = `
INSERT INTO contact_checks (site, status, contact_url, has_form, message, checked_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (site) DO UPDATE SET
	status = EXCLUDED.status,
	contact_url = EXCLUDED.contact_url,
	has_form = EXCLUDED.has_form,
	message = EXCLUDED.message,
	checked_at = EXCLUDED.checked_at`
	_, err := s.db.ExecContext(ctx, q,
		rec.Site, string(rec.Status), rec.ContactURL, rec.HasForm, rec.Message, rec.CheckedAt)
	if err != nil {
		return fmt.Errorf("save check: %w", err)
	}
	return nil
}

func (s *SQLStore) AppendHistory(ctx context.Context, entry types.HistoryEntry) error {
	const q = `
INSERT INTO contact_check_history (site, status, contact_url, message, checked_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := s.db.ExecContext(ctx, q,
		entry.Site, string(entry.Status), entry.ContactURL, entry.Message, entry.CheckedAt)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, site string) (types.CheckRecord, error) {
	const q = `
SELECT site, status, contact_url, has_form, message, checked_at
FROM contact_checks WHERE site = $1`
	var rec types.CheckRecord
	var status string
	err := s.db.QueryRowContext(ctx, q, site).Scan(
		&rec.Site, &status, &rec.ContactURL, &rec.HasForm, &rec.Message, &rec.CheckedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.CheckRecord{}, ErrNotFound
	}
	if err != nil {
		return types.CheckRecord{}, fmt.Errorf("get check: %w", err)
	}
	rec.Status = types.CheckStatus(status)
	return rec, nil
}

func (s *SQLStore) History(ctx context.Context, site string, limit int) ([]types.HistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT site, status, contact_url, message, checked_at
FROM contact_check_history WHERE site = $1
ORDER BY checked_at DESC LIMIT $2`
	rows, err := s.db.QueryContext(ctx, q, site, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []types.HistoryEntry
	for rows.Next() {
		var entry types.HistoryEntry
		var status string
		if err := rows.Scan(&entry.Site, &status, &entry.ContactURL, &entry.Message, &entry.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entry.Status = types.CheckStatus(status)
		out = append(out, entry)
	}
	return out, rows.Err()
}
