package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/supportdesk/internal/domain"
)

const (
	settingLanding = "landing"
	settingManual  = "manual"
)

// SettingsRepository stores singleton values as JSON documents keyed by name.
type SettingsRepository struct {
	db dbtx
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: pool}
}

// GetLandingConfig returns nil when nothing was stored or the stored
// document does not decode.
func (r *SettingsRepository) GetLandingConfig(ctx context.Context) (*domain.LandingConfig, error) {
	raw, err := r.get(ctx, settingLanding)
	if err != nil || raw == nil {
		return nil, err
	}
	var cfg domain.LandingConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, nil
	}
	return &cfg, nil
}

func (r *SettingsRepository) SaveLandingConfig(ctx context.Context, cfg domain.LandingConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return r.put(ctx, settingLanding, raw)
}

// GetManual returns an empty string when no manual was uploaded.
func (r *SettingsRepository) GetManual(ctx context.Context) (string, error) {
	raw, err := r.get(ctx, settingManual)
	if err != nil || raw == nil {
		return "", err
	}
	var content string
	if err := json.Unmarshal(raw, &content); err != nil {
		return "", nil
	}
	return content, nil
}

func (r *SettingsRepository) SaveManual(ctx context.Context, content string) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return err
	}
	return r.put(ctx, settingManual, raw)
}

func (r *SettingsRepository) DeleteManual(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM settings WHERE key = $1`, settingManual)
	return err
}

func (r *SettingsRepository) get(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read setting %s: %w", key, err)
	}
	return raw, nil
}

func (r *SettingsRepository) put(ctx context.Context, key string, raw []byte) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, raw, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}
