package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/Agent-Analytics/agent-analytics-core/internal/storage"
)

// Store implements the storage port on SQLite.
type Store struct {
	client *Client
	log    *zap.Logger
}

// NewStore creates a new SQLite-backed store.
func NewStore(client *Client, log *zap.Logger) *Store {
	return &Store{
		client: client,
		log:    log,
	}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		event_id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		event_name TEXT NOT NULL,
		properties TEXT,
		user_id TEXT,
		session_id TEXT,
		timestamp INTEGER NOT NULL,
		date TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_project_date ON events (project_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_events_project_event_date ON events (project_id, event_name, date)`,
	`CREATE INDEX IF NOT EXISTS idx_events_project_session ON events (project_id, session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_project_user ON events (project_id, user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events (timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		user_id TEXT,
		project_id TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER NOT NULL,
		duration INTEGER NOT NULL DEFAULT 0,
		entry_page TEXT,
		exit_page TEXT,
		event_count INTEGER NOT NULL DEFAULT 1,
		bounce INTEGER NOT NULL DEFAULT 1,
		date TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_project_date ON sessions (project_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_project_user ON sessions (project_id, user_id)`,
}

// InitSchema creates the event and session tables and their indexes if they
// do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.client.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	s.log.Info("SQLite schema initialized successfully")
	return nil
}

// Execute runs a single write statement.
func (s *Store) Execute(ctx context.Context, query string, args ...any) error {
	if _, err := s.client.DB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

// QueryAll runs a read statement and returns every row in order.
func (s *Store) QueryAll(ctx context.Context, query string, args ...any) ([]storage.Row, error) {
	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			s.log.Error("Failed to close result rows", zap.Error(err))
		}
	}(rows)

	out, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QueryOne runs a read statement and returns the first row, or nil when the
// result set is empty.
func (s *Store) QueryOne(ctx context.Context, query string, args ...any) (storage.Row, error) {
	all, err := s.QueryAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

// ExecuteBatch applies all statements in one transaction.
func (s *Store) ExecuteBatch(ctx context.Context, stmts []storage.Statement) error {
	if len(stmts) == 0 {
		return nil
	}

	tx, err := s.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.log.Error("Failed to roll back batch", zap.Error(rbErr))
			}
			return fmt.Errorf("failed to execute batch statement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Ping checks if the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.DB().PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.client.Close()
}

func scanRows(rows *sql.Rows) ([]storage.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	out := make([]storage.Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(storage.Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}
