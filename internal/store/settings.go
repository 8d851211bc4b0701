package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/erazemk/popis/internal/model"
)

const (
	keyAppSettings  = "app_settings"
	keyAppState     = "app_state"
	keyJWTSecret    = "jwt_secret"
	keyPasscodeHash = "passcode_hash"
)

// setting returns the raw value stored under key, or "" and false when unset.
func (s *Store) setting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) putSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return nil
}

// LoadSettings returns the saved settings. Missing or invalid fields fall
// back to their defaults.
func (s *Store) LoadSettings(ctx context.Context) (model.AppSettings, error) {
	settings := model.DefaultSettings()

	raw, ok, err := s.setting(ctx, keyAppSettings)
	if err != nil || !ok {
		return settings, err
	}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return model.DefaultSettings(), fmt.Errorf("decoding settings: %w", err)
	}
	settings.Normalize()
	return settings, nil
}

// SaveSettings stores the settings record.
func (s *Store) SaveSettings(ctx context.Context, settings model.AppSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return s.putSetting(ctx, keyAppSettings, string(raw))
}

// LoadAppState returns the saved app state, or a fresh one when none exists.
func (s *Store) LoadAppState(ctx context.Context) (model.AppState, error) {
	state := model.AppState{AppVersion: model.AppVersion}

	raw, ok, err := s.setting(ctx, keyAppState)
	if err != nil || !ok {
		return state, err
	}
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return model.AppState{AppVersion: model.AppVersion}, fmt.Errorf("decoding app state: %w", err)
	}
	return state, nil
}

// SaveAppState stores the app state record.
func (s *Store) SaveAppState(ctx context.Context, state model.AppState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding app state: %w", err)
	}
	return s.putSetting(ctx, keyAppState, string(raw))
}

// JWTSecret retrieves the JWT signing secret.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func (s *Store) JWTSecret(ctx context.Context) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		keyJWTSecret, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	secret, _, err := s.setting(ctx, keyJWTSecret)
	return secret, err
}

// PasscodeHash returns the bcrypt hash of the API passcode, or "" when none is set.
func (s *Store) PasscodeHash(ctx context.Context) (string, error) {
	hash, _, err := s.setting(ctx, keyPasscodeHash)
	return hash, err
}

// SetPasscodeHash stores the bcrypt hash of the API passcode.
func (s *Store) SetPasscodeHash(ctx context.Context, hash string) error {
	return s.putSetting(ctx, keyPasscodeHash, hash)
}
