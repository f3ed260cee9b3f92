// Package logstore persists one record per governed request. Writes happen
// off the request path and are best-effort.
package logstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record is the log row shape for a governed request.
type Record struct {
	ID            int64     `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	UserID        string    `json:"user_id"`
	TenantID      string    `json:"tenant_id"`
	Mode          string    `json:"mode"`
	Model         string    `json:"model"`
	PolicyVersion string    `json:"policy_version"`
	PIIDetected   bool      `json:"pii_detected"`
	PIICategories []string  `json:"pii_categories"`
	LatencyMS     int64     `json:"latency_ms"`
	Input         string    `json:"input"`
	Output        string    `json:"output"`
}

// Store is a SQLite-backed request log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the log database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open log store: %w", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
CREATE TABLE IF NOT EXISTS request_logs (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp      TEXT NOT NULL,
    user_id        TEXT NOT NULL,
    tenant_id      TEXT NOT NULL,
    mode           TEXT NOT NULL,
    model          TEXT NOT NULL,
    policy_version TEXT NOT NULL,
    pii_detected   INTEGER NOT NULL,
    pii_categories TEXT NOT NULL DEFAULT '[]',
    latency_ms     INTEGER NOT NULL,
    input          TEXT NOT NULL DEFAULT '',
    output         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_request_logs_timestamp ON request_logs (timestamp DESC);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init log schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Insert appends one record.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	categories, err := json.Marshal(rec.PIICategories)
	if err != nil {
		return fmt.Errorf("marshal pii categories: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO request_logs
    (timestamp, user_id, tenant_id, mode, model, policy_version, pii_detected, pii_categories, latency_ms, input, output)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.UserID, rec.TenantID, rec.Mode, rec.Model, rec.PolicyVersion,
		boolToInt(rec.PIIDetected), string(categories), rec.LatencyMS, rec.Input, rec.Output)
	if err != nil {
		return fmt.Errorf("insert log record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, timestamp, user_id, tenant_id, mode, model, policy_version, pii_detected, pii_categories, latency_ms, input, output
FROM request_logs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent logs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var ts, categories string
		var detected int
		if err := rows.Scan(&rec.ID, &ts, &rec.UserID, &rec.TenantID, &rec.Mode, &rec.Model,
			&rec.PolicyVersion, &detected, &categories, &rec.LatencyMS, &rec.Input, &rec.Output); err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		rec.PIIDetected = detected != 0
		if err := json.Unmarshal([]byte(categories), &rec.PIICategories); err != nil {
			rec.PIICategories = nil
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
