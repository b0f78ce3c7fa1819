package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tfkr-ae/bridgelog/domain"
)

var _ domain.KeyValueStore = (*Repository)(nil)

// Get implements domain.KeyValueStore.
func (repo *Repository) Get(key string) (string, bool, error) {
	var value string
	err := repo.dbConn.Get(&value, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting key %s : %w", key, err)
	}
	return value, true, nil
}

// Set implements domain.KeyValueStore.
func (repo *Repository) Set(key, value string) error {
	query := `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	          ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := repo.dbConn.Exec(query, key, value); err != nil {
		return fmt.Errorf("setting key %s : %w", key, err)
	}
	return nil
}

// Delete implements domain.KeyValueStore.
func (repo *Repository) Delete(key string) error {
	if _, err := repo.dbConn.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting key %s : %w", key, err)
	}
	return nil
}
