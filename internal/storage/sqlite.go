package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"genovault/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records in a single-file SQLite database. Records
// are stored as versioned JSON payloads keyed by hex signature.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) Put(ctx context.Context, gc *model.GC) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeGC(gc)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO genetic_codes (signature, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(signature) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, gc.Signature.Hex(), gc.SchemaVersion, gc.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, sig model.Signature) (*model.GC, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM genetic_codes WHERE signature = ?`, sig.Hex()).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	gc, err := DecodeGC(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode genetic code %s: %w", sig, err)
	}
	return gc, true, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, sig model.Signature) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `DELETE FROM genetic_codes WHERE signature = ?`, sig.Hex())
	return err
}

func (s *SQLiteStore) Has(ctx context.Context, sig model.Signature) (bool, error) {
	db, err := s.getDB()
	if err != nil {
		return false, err
	}

	var one int
	err = db.QueryRowContext(ctx, `SELECT 1 FROM genetic_codes WHERE signature = ?`, sig.Hex()).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}

	var n int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM genetic_codes`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) Signatures(ctx context.Context) ([]model.Signature, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT signature FROM genetic_codes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sigs []model.Signature
	for rows.Next() {
		var hex string
		if err := rows.Scan(&hex); err != nil {
			return nil, err
		}
		sig, err := model.SignatureFromHex(hex)
		if err != nil {
			return nil, fmt.Errorf("corrupt signature key %q: %w", hex, err)
		}
		sigs = append(sigs, sig)
	}
	return sigs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS genetic_codes (
			signature TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
