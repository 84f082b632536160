package app

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// KeyAPIKey is the keystore slot holding the Jules API credential.
const KeyAPIKey = "jules_api_key"

// Keystore is opaque key-value storage for secrets. Get returns "" for an
// absent key.
type Keystore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// SQLiteKeystore persists secrets in a single-table sqlite database under the
// user config dir. The file is created 0600.
type SQLiteKeystore struct {
	dbPath string

	mu   sync.Mutex
	db   *sql.DB
	once sync.Once
	err  error
}

func DefaultKeystorePath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "jules-cli", "keystore.db")
}

func NewSQLiteKeystore(dbPath string) (*SQLiteKeystore, error) {
	if strings.TrimSpace(dbPath) == "" {
		dbPath = DefaultKeystorePath()
	}
	if dbPath == "" {
		return nil, errors.New("no keystore path available")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, err
	}
	st := &SQLiteKeystore{dbPath: dbPath}
	// Initialize eagerly so callers fail fast.
	if err := st.init(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SQLiteKeystore) init() error {
	s.once.Do(func() {
		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			s.err = err
			return
		}
		// Keep sqlite responsive under contention.
		_, _ = db.Exec("PRAGMA busy_timeout = 5000;")
		_, _ = db.Exec("PRAGMA journal_mode = WAL;")
		_, _ = db.Exec("PRAGMA synchronous = NORMAL;")

		if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS secrets (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at_ns INTEGER NOT NULL
		);`); err != nil {
			_ = db.Close()
			s.err = err
			return
		}
		// Secrets live here; keep the file private to the user.
		_ = os.Chmod(s.dbPath, 0o600)
		s.db = db
	})
	return s.err
}

func (s *SQLiteKeystore) Get(key string) (string, error) {
	if err := s.init(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var value string
	err := s.db.QueryRow(`SELECT value FROM secrets WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *SQLiteKeystore) Set(key, value string) error {
	if err := s.init(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO secrets(key, value, updated_at_ns) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at_ns = excluded.updated_at_ns`,
		key, value, time.Now().UnixNano(),
	)
	return err
}

func (s *SQLiteKeystore) Delete(key string) error {
	if err := s.init(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM secrets WHERE key = ?`, key)
	return err
}

func (s *SQLiteKeystore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
