package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const openTimeout = 5 * time.Second

// SQLiteStore persists snapshots in a single-table SQLite database, keyed by
// the subscribed gateway topic so routers for different topics can share one
// file.
type SQLiteStore struct {
	db     *sql.DB
	topic  string
	logger *zap.Logger
}

func OpenSQLiteStore(path, topic string, logger *zap.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", path))
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}
	// SQLite supports a single writer
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			topic      TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshot table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		topic:  topic,
		logger: logger.With(zap.String("store", "snapshot")),
	}, nil
}

// Load returns the persisted snapshot for this store's topic. A missing row
// or a corrupt blob yields an empty snapshot, so the router cold-starts
// instead of failing.
func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE topic = ?`, s.topic).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Empty(), nil
	}
	if err != nil {
		return Empty(), fmt.Errorf("loading snapshot: %w", err)
	}
	snap, err := Decode(payload)
	if err != nil {
		s.logger.Warn("stored snapshot is corrupt, starting cold", zap.Error(err))
		return Empty(), nil
	}
	return snap, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	payload, err := Encode(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (topic, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(topic) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		s.topic, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
