package store

import (
	"errors"
	"strconv"
)

// defaultSettings is the closed set of known keys and their seed values.
var defaultSettings = map[string]string{
	"theme":                        "system",
	"default_shell":                "/bin/bash",
	"log_buffer_size":              "10000",
	"max_concurrent_processes":     "20",
	"auto_scroll_logs":             "true",
	"warn_before_kill":             "true",
	"kill_process_tree_by_default": "false",
}

// InitializeSettings seeds any missing settings with their defaults. Existing
// values are left alone.
func (s *Store) InitializeSettings() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range defaultSettings {
		if _, err := s.db.Exec(
			"INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)", key, value); err != nil {
			return translate(err)
		}
	}
	return nil
}

// GetSetting returns the value for key. Settings have no numeric id, so a
// missing key reports NotFound with id 0.
func (s *Store) GetSetting(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	if err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value); err != nil {
		translated := translate(err)
		var nf *NotFoundError
		if errors.As(translated, &nf) {
			return "", &NotFoundError{Entity: "setting", ID: 0}
		}
		return "", translated
	}
	return value, nil
}

// SetSetting validates and stores a value for a known key.
func (s *Store) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateSetting(key, value); err != nil {
		return err
	}
	_, err := s.db.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	return translate(err)
}

// ResetSettings restores every known key to its default value.
func (s *Store) ResetSettings() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range defaultSettings {
		if _, err := s.db.Exec(
			"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value); err != nil {
			return translate(err)
		}
	}
	return nil
}

// GetAllSettings returns every stored key/value pair.
func (s *Store) GetAllSettings() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, translate(err)
	}
	defer func() { _ = rows.Close() }()

	settings := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, translate(err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return settings, nil
}

func validateSetting(key, value string) error {
	if _, ok := defaultSettings[key]; !ok {
		return &InvalidDataError{Field: "key", Reason: "unknown setting: " + key}
	}

	switch key {
	case "log_buffer_size", "max_concurrent_processes":
		if _, err := strconv.Atoi(value); err != nil {
			return &InvalidDataError{Field: "value", Reason: "must be a number"}
		}
	case "auto_scroll_logs", "warn_before_kill", "kill_process_tree_by_default":
		if value != "true" && value != "false" {
			return &InvalidDataError{Field: "value", Reason: "must be 'true' or 'false'"}
		}
	}
	return nil
}
