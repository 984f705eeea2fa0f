package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// MemoryDSN keeps the database in process memory.
const MemoryDSN = ":memory:"

// DB is a key-value blob store on sqlite. Every key is scoped to the session
// the DB was opened for, so progress never carries over into a new session.
type DB struct {
	conn      *sql.DB
	sessionID string
}

// Open connects to the database at dsn and ensures the schema exists. An
// empty sessionID starts a new session with a random id.
func Open(dsn, sessionID string) (*DB, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if _, err := uuid.Parse(sessionID); err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to :memory: is a separate database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: conn, sessionID: sessionID}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// SessionID returns the id keys are scoped to.
func (db *DB) SessionID() string {
	return db.sessionID
}

// Get returns the value stored under key, if any.
func (db *DB) Get(key string) (string, bool, error) {
	var value string
	row := db.conn.QueryRow(`
		SELECT value FROM blobs WHERE session_id = ? AND key = ?
	`, db.sessionID, key)

	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (db *DB) Set(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO blobs (session_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id, key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at
	`,
		db.sessionID,
		key,
		value,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}
