package rag

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DocumentInfo is the listing shape for stored documents.
type DocumentInfo struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// KeywordIndex is the per-tenant token-match store. As with VectorIndex,
// the tenant id is a mandatory partition key on every operation.
type KeywordIndex interface {
	Upsert(ctx context.Context, tenantID, docID, text string, metadata map[string]string) error
	Query(ctx context.Context, tenantID, query string, k int) ([]string, error)
	List(ctx context.Context, tenantID string) ([]DocumentInfo, error)
	Close() error
}

type sqliteKeywordIndex struct {
	db *sql.DB
}

// NewKeywordIndex opens (creating if needed) a SQLite-backed keyword index at
// the given path. Use ":memory:" for tests.
func NewKeywordIndex(path string) (KeywordIndex, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open keyword index: %w", err)
	}

	// Single writer connection keeps SQLite happy under concurrent requests.
	db.SetMaxOpenConns(1)

	schema := `
CREATE TABLE IF NOT EXISTS keyword_docs (
    id        TEXT NOT NULL,
    tenant_id TEXT NOT NULL,
    content   TEXT NOT NULL,
    metadata  TEXT NOT NULL DEFAULT '{}',
    PRIMARY KEY (id, tenant_id)
);
CREATE INDEX IF NOT EXISTS idx_keyword_docs_tenant ON keyword_docs (tenant_id);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init keyword schema: %w", err)
	}

	return &sqliteKeywordIndex{db: db}, nil
}

func (s *sqliteKeywordIndex) Upsert(ctx context.Context, tenantID, docID, text string, metadata map[string]string) error {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO keyword_docs (id, tenant_id, content, metadata) VALUES (?, ?, ?, ?)`,
		docID, tenantID, text, string(meta))
	if err != nil {
		return fmt.Errorf("keyword upsert %s: %w", docID, err)
	}
	return nil
}

// likeEscaper neutralizes LIKE metacharacters so query tokens match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Query tokenizes the query on whitespace and matches documents containing
// any token as a literal substring. Ranking is insertion order, first k
// matches.
func (s *sqliteKeywordIndex) Query(ctx context.Context, tenantID, query string, k int) ([]string, error) {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	clauses := make([]string, len(tokens))
	args := make([]any, 0, len(tokens)+2)
	args = append(args, tenantID)
	for i, token := range tokens {
		clauses[i] = `content LIKE ? ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(token)+"%")
	}
	args = append(args, k)

	q := fmt.Sprintf(
		`SELECT content FROM keyword_docs WHERE tenant_id = ? AND (%s) LIMIT ?`,
		strings.Join(clauses, " OR "))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("keyword query: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan keyword row: %w", err)
		}
		texts = append(texts, content)
	}
	return texts, rows.Err()
}

func (s *sqliteKeywordIndex) List(ctx context.Context, tenantID string) ([]DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, metadata FROM keyword_docs WHERE tenant_id = ? ORDER BY rowid`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentInfo
	for rows.Next() {
		var info DocumentInfo
		var meta string
		if err := rows.Scan(&info.ID, &meta); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &info.Metadata); err != nil {
			info.Metadata = map[string]string{}
		}
		docs = append(docs, info)
	}
	return docs, rows.Err()
}

func (s *sqliteKeywordIndex) Close() error {
	return s.db.Close()
}
