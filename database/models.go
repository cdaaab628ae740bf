package database

import (
	"time"

	"github.com/google/uuid"
)

// ProviderConfig is one credential-bearing provider configuration, e.g. an
// AI provider's API key or a cloud access key pair.
type ProviderConfig struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Provider        string    `db:"provider" json:"provider"`
	BaseURL         string    `db:"base_url" json:"base_url"`
	APIKey          string    `db:"api_key" json:"api_key"`
	AccessKeyID     string    `db:"access_key_id" json:"access_key_id"`
	SecretAccessKey string    `db:"secret_access_key" json:"secret_access_key"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Record returns the config as a field map keyed by column name. It holds
// the raw credential values; pass it through redact.Record before logging.
func (p ProviderConfig) Record() map[string]any {
	return map[string]any{
		"id":                p.ID.String(),
		"name":              p.Name,
		"provider":          p.Provider,
		"base_url":          p.BaseURL,
		"api_key":           p.APIKey,
		"access_key_id":     p.AccessKeyID,
		"secret_access_key": p.SecretAccessKey,
		"created_at":        p.CreatedAt,
		"updated_at":        p.UpdatedAt,
	}
}

type InsertProviderConfigParams struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name" validate:"required,provider_config_name"`
	Provider        string    `db:"provider" json:"provider" validate:"required"`
	BaseURL         string    `db:"base_url" json:"base_url" validate:"omitempty,url"`
	APIKey          string    `db:"api_key" json:"api_key"`
	AccessKeyID     string    `db:"access_key_id" json:"access_key_id"`
	SecretAccessKey string    `db:"secret_access_key" json:"secret_access_key"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type UpdateProviderConfigParams struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Provider        string    `db:"provider" json:"provider" validate:"required"`
	BaseURL         string    `db:"base_url" json:"base_url" validate:"omitempty,url"`
	APIKey          string    `db:"api_key" json:"api_key"`
	AccessKeyID     string    `db:"access_key_id" json:"access_key_id"`
	SecretAccessKey string    `db:"secret_access_key" json:"secret_access_key"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Now returns the current time rounded to the precision postgres stores.
func Now() time.Time {
	return Time(time.Now())
}

// Time normalizes t for storage.
func Time(t time.Time) time.Time {
	return t.UTC().Round(time.Microsecond)
}
