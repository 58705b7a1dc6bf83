package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ssth/ssth-inventory/internal/platform/db"
)

// ConfigLoader supplies the provider configuration each time a client call
// needs it.
type ConfigLoader interface {
	Load(ctx context.Context) (Config, error)
}

// StaticLoader always returns the same configuration.
type StaticLoader struct {
	Config Config
}

// Load implements ConfigLoader.
func (l StaticLoader) Load(context.Context) (Config, error) { return l.Config, nil }

// settingsDocument is the JSON stored in system_settings. Providers are keyed
// by provider id.
type settingsDocument struct {
	Default   string                    `json:"defaultProvider"`
	Providers map[string]ProviderConfig `json:"providers"`
}

// SettingsLoader reads provider settings from the system_settings table.
type SettingsLoader struct {
	db  db.Querier
	key string
}

// NewSettingsLoader builds a loader for the given setting key.
func NewSettingsLoader(q db.Querier, key string) *SettingsLoader {
	return &SettingsLoader{db: q, key: key}
}

// Load returns an empty configuration when the setting is absent.
func (l *SettingsLoader) Load(ctx context.Context) (Config, error) {
	var raw []byte
	err := l.db.QueryRow(ctx, `SELECT setting_value FROM system_settings WHERE setting_key = $1`, l.key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("ai: load settings: %w", err)
	}
	return ParseSettings(raw)
}

// ParseSettings decodes a stored settings document.
func ParseSettings(raw []byte) (Config, error) {
	if len(raw) == 0 {
		return Config{}, nil
	}
	var doc settingsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Config{}, fmt.Errorf("ai: decode settings: %w", err)
	}
	providers := make([]ProviderConfig, 0, len(doc.Providers))
	for id, p := range doc.Providers {
		p.ID = id
		providers = append(providers, p)
	}
	return NewConfig(doc.Default, providers)
}
