package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

type Database struct {
	db               *sql.DB
	PreparedPingStmt *sql.Stmt
	logger           *zap.Logger
	// Cache for ping results
	lastPingTime   time.Time
	lastPingError  error
	pingCacheMutex sync.RWMutex
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

const schema = `
-- Invite counts, one row per inviter. position keeps first-credited order.
CREATE TABLE IF NOT EXISTS invite_counts (
    position INTEGER NOT NULL,
    user_id TEXT PRIMARY KEY,
    count INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0)
);

-- Who invited whom, one row per tracked member
CREATE TABLE IF NOT EXISTS invited_by (
    member_id TEXT PRIMARY KEY,
    inviter_id TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invite_counts_position ON invite_counts(position);
CREATE INDEX IF NOT EXISTS idx_invited_by_inviter ON invited_by(inviter_id);
`

func NewDatabase(cfg PostgresConfig, logger *zap.Logger) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Writes are whole-table replacements from a single process; a small pool is plenty.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(1 * time.Hour)

	// Execute schema
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	pingStmt, err := db.Prepare("SELECT 1")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare ping statement: %w", err)
	}

	logger.Info("postgres connected", zap.String("host", cfg.Host), zap.String("database", cfg.Database))

	return &Database{
		db:               db,
		PreparedPingStmt: pingStmt,
		logger:           logger,
	}, nil
}

func (d *Database) Close() error {
	if d.PreparedPingStmt != nil {
		d.PreparedPingStmt.Close()
	}
	return d.db.Close()
}

// Ping checks the connection, reusing the last result for up to a second so
// a burst of !ping commands does not hammer the server.
func (d *Database) Ping() error {
	d.pingCacheMutex.RLock()
	if time.Since(d.lastPingTime) < time.Second {
		err := d.lastPingError
		d.pingCacheMutex.RUnlock()
		return err
	}
	d.pingCacheMutex.RUnlock()

	var err error
	if d.PreparedPingStmt != nil {
		var result int
		err = d.PreparedPingStmt.QueryRow().Scan(&result)
	} else {
		err = d.db.Ping()
	}

	d.pingCacheMutex.Lock()
	d.lastPingTime = time.Now()
	d.lastPingError = err
	d.pingCacheMutex.Unlock()
	return err
}

// withTx runs fn in a transaction, rolling back on error.
func (d *Database) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
