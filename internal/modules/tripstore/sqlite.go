package tripstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"haul-tracker/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// SQLiteStore is the on-device Store implementation: a single-file
// SQLite database holding one key/value table with JSON values.
//
// All access goes through one connection guarded by a mutex. This is the
// single-writer policy: concurrent saves serialize in call order, each
// writing a full snapshot, so the last call always wins and there is no
// window where a slower earlier write overtakes a later one.
type SQLiteStore struct {
	mu     sync.Mutex
	conn   *sqlite.Conn
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// Open creates or opens the store at path. Use ":memory:" in tests.
func Open(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("tripstore.Open: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("tripstore.Open: %s: %w", pragma, err)
		}
	}

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tripstore.Open: schema: %w", err)
	}

	return &SQLiteStore{conn: conn, logger: logger}, nil
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *SQLiteStore) LoadForm(d models.Direction) (models.TripForm, bool) {
	var form models.TripForm
	if !s.loadJSON(FormKey(d), &form) {
		return models.TripForm{}, false
	}
	return form, true
}

func (s *SQLiteStore) SaveForm(d models.Direction, form models.TripForm) models.Outcome {
	return s.saveJSON(FormKey(d), form)
}

func (s *SQLiteStore) LoadStatus(d models.Direction) (models.TripStatus, bool) {
	var status models.TripStatus
	if !s.loadJSON(StatusKey(d), &status) {
		return models.NewTripStatus(), false
	}
	return status.Normalize(), true
}

func (s *SQLiteStore) SaveStatus(d models.Direction, status models.TripStatus) models.Outcome {
	return s.saveJSON(StatusKey(d), status)
}

func (s *SQLiteStore) LoadDeliveryDate() (string, bool) {
	raw, ok := s.get(KeyDeliveryDate)
	return raw, ok && raw != ""
}

func (s *SQLiteStore) SaveDeliveryDate(date string) models.Outcome {
	return s.set(KeyDeliveryDate, date)
}

func (s *SQLiteStore) LoadSession() (models.Session, bool) {
	token, ok := s.get(KeyToken)
	if !ok || token == "" {
		return models.Session{}, false
	}
	session := models.Session{Token: token}
	// A missing driver record still yields a usable session; only the
	// token is required for authenticated calls.
	s.loadJSON(KeyUser, &session.Driver)
	return session, true
}

func (s *SQLiteStore) SaveSession(session models.Session) models.Outcome {
	if out := s.set(KeyToken, session.Token); !out.Applied() {
		return out
	}
	return s.saveJSON(KeyUser, session.Driver)
}

func (s *SQLiteStore) Reset(keys ...string) models.Outcome {
	if len(keys) == 0 {
		return models.OutcomeApplied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	err := sqlitex.Execute(s.conn,
		fmt.Sprintf("DELETE FROM kv WHERE key IN (%s)", placeholders),
		&sqlitex.ExecOptions{Args: args})
	if err != nil {
		s.logger.Warn("trip store reset ignored", "keys", keys, "error", err)
		return models.OutcomeIgnored
	}
	return models.OutcomeApplied
}

// get returns the raw value for key. A read failure logs and reports
// absence; callers fall back to defaults either way.
func (s *SQLiteStore) get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	found := false
	err := sqlitex.Execute(s.conn, "SELECT value FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = stmt.ColumnText(0)
			found = true
			return nil
		},
	})
	if err != nil {
		s.logger.Warn("trip store read ignored", "key", key, "error", err)
		return "", false
	}
	return value, found
}

func (s *SQLiteStore) set(key, value string) models.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := sqlitex.Execute(s.conn,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		&sqlitex.ExecOptions{Args: []any{key, value}})
	if err != nil {
		s.logger.Warn("trip store write ignored", "key", key, "error", err)
		return models.OutcomeIgnored
	}
	return models.OutcomeApplied
}

func (s *SQLiteStore) loadJSON(key string, dest any) bool {
	raw, ok := s.get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.logger.Warn("trip store record corrupt, using defaults", "key", key, "error", err)
		return false
	}
	return true
}

func (s *SQLiteStore) saveJSON(key string, value any) models.Outcome {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("trip store write ignored", "key", key, "error", err)
		return models.OutcomeIgnored
	}
	return s.set(key, string(raw))
}
