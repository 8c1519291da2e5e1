package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Agent-Analytics/agent-analytics-core/internal/config"
)

// Client wraps the SQLite connection pool.
type Client struct {
	db     *sql.DB
	config *config.SQLite
	log    *zap.Logger
}

// NewClient opens the SQLite database with the given configuration.
func NewClient(cfg *config.SQLite, log *zap.Logger) (*Client, error) {
	log.Info("Opening SQLite database", zap.String("path", cfg.Path))

	// _busy_timeout keeps concurrent writers from failing immediately on
	// SQLITE_BUSY; WAL lets readers proceed while a write is in flight.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on", cfg.Path, cfg.BusyTimeoutMS)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Error("Failed to open SQLite database", zap.Error(err))
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single writer connection sidesteps database-locked errors; SQLite
	// serializes writes anyway.
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := db.Ping(); err != nil {
		log.Error("Failed to ping SQLite database", zap.Error(err))
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	log.Info("SQLite database opened successfully")

	return &Client{db: db, config: cfg, log: log}, nil
}

// DB returns the underlying connection pool.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the database.
func (c *Client) Close() error {
	c.log.Info("Closing SQLite database")
	if err := c.db.Close(); err != nil {
		c.log.Error("Error closing SQLite database", zap.Error(err))
		return err
	}
	return nil
}
