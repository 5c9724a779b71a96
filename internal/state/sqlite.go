package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps sessions in a SQLite database. Load returns the most
// recently saved session.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite creates or opens the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		active TEXT NOT NULL DEFAULT '',
		selection TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tabs (
		session_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		path TEXT NOT NULL,
		title TEXT NOT NULL,
		ref TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (session_id, position),
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns the latest session, or a fresh state when none was saved.
func (s *SQLiteStore) Load(ctx context.Context) (State, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, active, selection, updated_at
		FROM sessions ORDER BY updated_at DESC, rowid DESC LIMIT 1`)

	var (
		st      State
		updated int64
	)
	err := row.Scan(&st.SessionID, &st.Active, &st.Selection, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return New(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load session: %w", err)
	}
	st.UpdatedAt = time.UnixMilli(updated).UTC()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, title, ref FROM tabs
		WHERE session_id = ? ORDER BY position`, st.SessionID)
	if err != nil {
		return State{}, fmt.Errorf("load tabs: %w", err)
	}
	defer rows.Close()

	st.Tabs = []Tab{}
	for rows.Next() {
		var t Tab
		if err := rows.Scan(&t.ID, &t.Path, &t.Title, &t.Ref); err != nil {
			return State{}, fmt.Errorf("scan tab: %w", err)
		}
		st.Tabs = append(st.Tabs, t)
	}
	if err := rows.Err(); err != nil {
		return State{}, fmt.Errorf("load tabs: %w", err)
	}
	return st, nil
}

// Save upserts the session and replaces its tabs in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, st State) error {
	if st.SessionID == "" {
		return errors.New("save session: empty session id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions (id, active, selection, updated_at)
		VALUES (?, ?, ?, ?)`,
		st.SessionID, st.Active, st.Selection, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tabs WHERE session_id = ?`, st.SessionID); err != nil {
		return fmt.Errorf("clear tabs: %w", err)
	}
	for i, t := range st.Tabs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tabs (session_id, position, id, path, title, ref)
			VALUES (?, ?, ?, ?, ?, ?)`,
			st.SessionID, i, t.ID, t.Path, t.Title, t.Ref)
		if err != nil {
			return fmt.Errorf("save tab %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// Sessions returns the IDs of all saved sessions, newest first.
func (s *SQLiteStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
