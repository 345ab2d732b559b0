package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
)

// SettingsRepository reads registrar-managed overrides from the settings
// table. Values are stored as text and parsed on read.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the raw value for a key and whether the key exists.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT value FROM settings WHERE key = $1`
	var value string
	if err := r.db.GetContext(ctx, &value, query, key); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

// GetFloat returns a setting parsed as float64.
func (r *SettingsRepository) GetFloat(ctx context.Context, key string) (float64, bool, error) {
	raw, found, err := r.Get(ctx, key)
	if err != nil || !found {
		return 0, found, err
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse setting %s: %w", key, err)
	}
	return value, true, nil
}

// GetBool returns a setting parsed as bool.
func (r *SettingsRepository) GetBool(ctx context.Context, key string) (bool, bool, error) {
	raw, found, err := r.Get(ctx, key)
	if err != nil || !found {
		return false, found, err
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("parse setting %s: %w", key, err)
	}
	return value, true, nil
}
