package database

import (
	"context"

	"github.com/google/uuid"
)

const providerConfigColumns = `id, name, provider, base_url, api_key, access_key_id, secret_access_key, created_at, updated_at`

const getProviderConfigByID = `
SELECT ` + providerConfigColumns + `
FROM provider_configs
WHERE id = $1
`

func (q *sqlQuerier) GetProviderConfigByID(ctx context.Context, id uuid.UUID) (ProviderConfig, error) {
	var i ProviderConfig
	err := q.db.GetContext(ctx, &i, getProviderConfigByID, id)
	return i, err
}

const getProviderConfigByName = `
SELECT ` + providerConfigColumns + `
FROM provider_configs
WHERE lower(name) = lower($1)
`

func (q *sqlQuerier) GetProviderConfigByName(ctx context.Context, name string) (ProviderConfig, error) {
	var i ProviderConfig
	err := q.db.GetContext(ctx, &i, getProviderConfigByName, name)
	return i, err
}

const getProviderConfigs = `
SELECT ` + providerConfigColumns + `
FROM provider_configs
ORDER BY name ASC
`

func (q *sqlQuerier) GetProviderConfigs(ctx context.Context) ([]ProviderConfig, error) {
	items := []ProviderConfig{}
	if err := q.db.SelectContext(ctx, &items, getProviderConfigs); err != nil {
		return nil, err
	}
	return items, nil
}

const insertProviderConfig = `
INSERT INTO provider_configs (
	id, name, provider, base_url, api_key, access_key_id, secret_access_key, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9
)
RETURNING ` + providerConfigColumns

func (q *sqlQuerier) InsertProviderConfig(ctx context.Context, arg InsertProviderConfigParams) (ProviderConfig, error) {
	var i ProviderConfig
	err := q.db.GetContext(ctx, &i, insertProviderConfig,
		arg.ID,
		arg.Name,
		arg.Provider,
		arg.BaseURL,
		arg.APIKey,
		arg.AccessKeyID,
		arg.SecretAccessKey,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return i, err
}

const updateProviderConfig = `
UPDATE provider_configs
SET
	provider = $2,
	base_url = $3,
	api_key = $4,
	access_key_id = $5,
	secret_access_key = $6,
	updated_at = $7
WHERE id = $1
RETURNING ` + providerConfigColumns

func (q *sqlQuerier) UpdateProviderConfig(ctx context.Context, arg UpdateProviderConfigParams) (ProviderConfig, error) {
	var i ProviderConfig
	err := q.db.GetContext(ctx, &i, updateProviderConfig,
		arg.ID,
		arg.Provider,
		arg.BaseURL,
		arg.APIKey,
		arg.AccessKeyID,
		arg.SecretAccessKey,
		arg.UpdatedAt,
	)
	return i, err
}

const deleteProviderConfig = `
DELETE FROM provider_configs
WHERE id = $1
`

func (q *sqlQuerier) DeleteProviderConfig(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, deleteProviderConfig, id)
	return err
}
