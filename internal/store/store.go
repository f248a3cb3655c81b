package store

import (
	"database/sql"
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"github.com/cmdvault/cmdvault/internal/log"
)

var logger = log.GetLogger()

// Store provides all persistence operations over a single SQLite handle.
// Every exported method takes the mutex for its whole duration, so logical
// operations are fully serialized; multi-statement invariants run inside one
// transaction acquired and released within that single locked call.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// New creates a Store using db. The handle should come from internal/db.Open
// so the schema is in place and the connection count is pinned to one.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// create runs an INSERT and returns the new rowid.
func (s *Store) create(entity, query string, args ...any) (int64, error) {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		logger.WithError(err).WithField("entity", entity).Error("insert failed")
		return 0, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, translate(err)
	}
	logger.WithField("entity", entity).WithField("id", id).Info("created")
	return id, nil
}

// mutate runs an UPDATE or DELETE targeting one row by id and maps a zero
// affected-row count to NotFound.
func (s *Store) mutate(entity string, id int64, query string, args ...any) error {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		logger.WithError(err).WithField("entity", entity).WithField("id", id).Error("mutation failed")
		return translate(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return translate(err)
	}
	if rows == 0 {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows so row mappers can be
// shared between single- and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

// queryOne fetches a single row by id, mapping "no rows" to NotFound.
func queryOne[T any](s *Store, entity string, id int64, query string, mapRow func(scanner) (T, error), args ...any) (T, error) {
	var zero T
	item, err := mapRow(s.db.QueryRow(query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return zero, &NotFoundError{Entity: entity, ID: id}
		}
		return zero, translate(err)
	}
	return item, nil
}

// queryList fetches all rows produced by query through mapRow.
func queryList[T any](s *Store, query string, mapRow func(scanner) (T, error), args ...any) ([]T, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer func() { _ = rows.Close() }()

	var out []T
	for rows.Next() {
		item, err := mapRow(rows)
		if err != nil {
			return nil, translate(err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

var envKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// validateNonEmpty rejects values that are empty after trimming.
func validateNonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &InvalidDataError{Field: field, Reason: field + " cannot be empty"}
	}
	return nil
}

// validateEnvVarKeys rejects environment variable names outside [A-Za-z0-9_-]+.
func validateEnvVarKeys(envVars map[string]string) error {
	for key := range envVars {
		if !envKeyPattern.MatchString(key) {
			return &InvalidDataError{
				Field:  "env_vars",
				Reason: "invalid key '" + key + "': only alphanumeric, underscore, dash",
			}
		}
	}
	return nil
}

// encodeStringMap serializes env vars for storage; nil maps stay NULL.
func encodeStringMap(m map[string]string) (*string, error) {
	if m == nil {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, &InvalidDataError{Field: "env_vars", Reason: err.Error()}
	}
	enc := string(raw)
	return &enc, nil
}

// decodeStringMap is deliberately lenient: a malformed stored blob decodes to
// nil with a warning so the owning entity stays viewable and fixable.
func decodeStringMap(raw *string) map[string]string {
	if raw == nil {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(*raw), &m); err != nil {
		logger.WithError(err).Warn("failed to parse env_vars, using none")
		return nil
	}
	return m
}

// encodeStringSlice serializes an argument list; nil encodes as the empty list.
func encodeStringSlice(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", &InvalidDataError{Field: "arguments", Reason: err.Error()}
	}
	return string(raw), nil
}

// decodeStringSlice shares decodeStringMap's leniency for argument lists.
func decodeStringSlice(raw string) []string {
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.WithError(err).Warn("failed to parse arguments, using default")
		return []string{}
	}
	if items == nil {
		items = []string{}
	}
	return items
}
