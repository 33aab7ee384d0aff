package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultRetention is how long an idle conversation survives purges.
const DefaultRetention = 30 * 24 * time.Hour

// SQLiteStore is a durable Store backed by a single SQLite file. WAL
// mode keeps concurrent conversation reads cheap.
type SQLiteStore struct {
	conn         *sql.DB
	path         string
	historyLimit int
	retention    time.Duration
}

// OpenSQLite opens (or creates) the digest database at path, creating
// parent directories as needed and applying pending migrations.
// Conversations idle past the retention window are purged at open.
func OpenSQLite(path string, historyLimit int, retention time.Duration) (*SQLiteStore, error) {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if retention <= 0 {
		retention = DefaultRetention
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLiteStore{
		conn:         conn,
		path:         path,
		historyLimit: historyLimit,
		retention:    retention,
	}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	if n, err := s.Purge(context.Background()); err != nil {
		log.Printf("[memory] retention purge failed: %v", err)
	} else if n > 0 {
		log.Printf("[memory] purged %d digests past retention", n)
	}
	return s, nil
}

// Path returns the path to the database file.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.conn.Close() }

func (s *SQLiteStore) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Digests},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}
	return nil
}

const migrationV1Digests = `
CREATE TABLE IF NOT EXISTS digests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT NOT NULL,
	query TEXT NOT NULL,
	response TEXT NOT NULL,
	confidence REAL NOT NULL DEFAULT 0,
	subtasks TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_digests_conversation ON digests(conversation_id, id);
`

// Append inserts the digest and trims the conversation to the history
// limit in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, d Digest) error {
	subtasks, err := json.Marshal(d.Subtasks)
	if err != nil {
		return fmt.Errorf("encode subtasks: %w", err)
	}
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO digests (conversation_id, query, response, confidence, subtasks, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ConversationID, d.Query, d.Response, d.Confidence, string(subtasks), createdAt)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert digest: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM digests
		WHERE conversation_id = ?
		  AND id NOT IN (
			SELECT id FROM digests WHERE conversation_id = ? ORDER BY id DESC LIMIT ?
		  )`,
		d.ConversationID, d.ConversationID, s.historyLimit)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("trim history: %w", err)
	}

	return tx.Commit()
}

// History returns the conversation's retained digests, oldest first.
func (s *SQLiteStore) History(ctx context.Context, conversationID string) ([]Digest, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT conversation_id, query, response, confidence, subtasks, created_at
		FROM (
			SELECT * FROM digests WHERE conversation_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		conversationID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var digests []Digest
	for rows.Next() {
		var d Digest
		var subtasks string
		if err := rows.Scan(&d.ConversationID, &d.Query, &d.Response, &d.Confidence, &subtasks, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan digest: %w", err)
		}
		if err := json.Unmarshal([]byte(subtasks), &d.Subtasks); err != nil {
			return nil, fmt.Errorf("decode subtasks: %w", err)
		}
		digests = append(digests, d)
	}
	return digests, rows.Err()
}

// Purge deletes conversations whose newest digest is older than the
// retention window. It returns the number of digests removed.
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.retention)
	res, err := s.conn.ExecContext(ctx, `
		DELETE FROM digests
		WHERE conversation_id IN (
			SELECT conversation_id FROM digests GROUP BY conversation_id HAVING MAX(created_at) < ?
		)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge stale conversations: %w", err)
	}
	return res.RowsAffected()
}

var _ Store = (*SQLiteStore)(nil)
