// Package dbcrypt wraps a database.Store so that provider credentials are
// encrypted before they are written and decrypted after they are read.
package dbcrypt

import (
	"context"
	"database/sql"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"cdr.dev/slog/v3"

	"github.com/coder/secretcrypt/database"
	"github.com/coder/secretcrypt/secretcrypt"
)

const wrapperName = "dbcrypt"

// New creates a database.Store wrapper that encrypts/decrypts values
// stored at rest in the database. Wrapping an already wrapped store
// returns it unchanged.
func New(db database.Store, crypter *secretcrypt.Crypter) database.Store {
	if slices.Contains(db.Wrappers(), wrapperName) {
		return db
	}
	return &dbCrypt{
		crypter: crypter,
		Store:   db,
	}
}

type dbCrypt struct {
	crypter *secretcrypt.Crypter
	database.Store
}

func (db *dbCrypt) Wrappers() []string {
	return append(db.Store.Wrappers(), wrapperName)
}

func (db *dbCrypt) InTx(function func(database.Store) error, txOpts *sql.TxOptions) error {
	return db.Store.InTx(func(s database.Store) error {
		return function(&dbCrypt{
			crypter: db.crypter,
			Store:   s,
		})
	}, txOpts)
}

func (db *dbCrypt) GetProviderConfigByID(ctx context.Context, id uuid.UUID) (database.ProviderConfig, error) {
	pc, err := db.Store.GetProviderConfigByID(ctx, id)
	if err != nil {
		return database.ProviderConfig{}, err
	}
	if err := db.decryptConfig(ctx, &pc); err != nil {
		return database.ProviderConfig{}, err
	}
	return pc, nil
}

func (db *dbCrypt) GetProviderConfigByName(ctx context.Context, name string) (database.ProviderConfig, error) {
	pc, err := db.Store.GetProviderConfigByName(ctx, name)
	if err != nil {
		return database.ProviderConfig{}, err
	}
	if err := db.decryptConfig(ctx, &pc); err != nil {
		return database.ProviderConfig{}, err
	}
	return pc, nil
}

func (db *dbCrypt) GetProviderConfigs(ctx context.Context) ([]database.ProviderConfig, error) {
	pcs, err := db.Store.GetProviderConfigs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range pcs {
		if err := db.decryptConfig(ctx, &pcs[i]); err != nil {
			return nil, err
		}
	}
	return pcs, nil
}

func (db *dbCrypt) InsertProviderConfig(ctx context.Context, arg database.InsertProviderConfigParams) (database.ProviderConfig, error) {
	for _, field := range []*string{&arg.APIKey, &arg.AccessKeyID, &arg.SecretAccessKey} {
		if err := db.encryptField(ctx, field); err != nil {
			return database.ProviderConfig{}, err
		}
	}
	pc, err := db.Store.InsertProviderConfig(ctx, arg)
	if err != nil {
		return database.ProviderConfig{}, err
	}
	if err := db.decryptConfig(ctx, &pc); err != nil {
		return database.ProviderConfig{}, err
	}
	return pc, nil
}

func (db *dbCrypt) UpdateProviderConfig(ctx context.Context, arg database.UpdateProviderConfigParams) (database.ProviderConfig, error) {
	for _, field := range []*string{&arg.APIKey, &arg.AccessKeyID, &arg.SecretAccessKey} {
		if err := db.encryptField(ctx, field); err != nil {
			return database.ProviderConfig{}, err
		}
	}
	pc, err := db.Store.UpdateProviderConfig(ctx, arg)
	if err != nil {
		return database.ProviderConfig{}, err
	}
	if err := db.decryptConfig(ctx, &pc); err != nil {
		return database.ProviderConfig{}, err
	}
	return pc, nil
}

// This does not need any special handling as it does not touch any encrypted fields.
// Explicitly defining this here to avoid confusion.
func (db *dbCrypt) DeleteProviderConfig(ctx context.Context, id uuid.UUID) error {
	return db.Store.DeleteProviderConfig(ctx, id)
}

func (db *dbCrypt) decryptConfig(ctx context.Context, pc *database.ProviderConfig) error {
	for _, field := range []*string{&pc.APIKey, &pc.AccessKeyID, &pc.SecretAccessKey} {
		if err := db.decryptField(ctx, field); err != nil {
			return xerrors.Errorf("provider config %q: %w", pc.Name, err)
		}
	}
	return nil
}

func (db *dbCrypt) encryptField(ctx context.Context, field *string) error {
	if field == nil {
		return xerrors.Errorf("developer error: encryptField called with nil field")
	}
	encrypted, err := db.crypter.Encrypt(ctx, *field)
	if err != nil {
		return err
	}
	*field = encrypted
	return nil
}

func (db *dbCrypt) decryptField(ctx context.Context, field *string) error {
	if field == nil {
		return xerrors.Errorf("developer error: decryptField called with nil field")
	}
	decrypted, err := db.crypter.Decrypt(ctx, *field)
	if err != nil {
		return err
	}
	*field = decrypted
	return nil
}

// EncryptAll rewrites every provider config whose credentials are still
// stored in plaintext. store must be the unwrapped store so that the raw
// column values are visible. It returns the number of rows rewritten.
func EncryptAll(ctx context.Context, logger slog.Logger, store database.Store, crypter *secretcrypt.Crypter) (int, error) {
	if slices.Contains(store.Wrappers(), wrapperName) {
		return 0, xerrors.New("developer error: EncryptAll requires an unwrapped store")
	}
	if !crypter.Enabled() {
		return 0, xerrors.Errorf("encrypt existing provider configs: %w", secretcrypt.ErrKeyUnavailable)
	}

	var updated int
	err := store.InTx(func(tx database.Store) error {
		updated = 0
		pcs, err := tx.GetProviderConfigs(ctx)
		if err != nil {
			return xerrors.Errorf("get provider configs: %w", err)
		}
		for _, pc := range pcs {
			if !needsEncryption(pc) {
				logger.Debug(ctx, "provider config already encrypted", slog.F("name", pc.Name))
				continue
			}
			arg := database.UpdateProviderConfigParams{
				ID:              pc.ID,
				Provider:        pc.Provider,
				BaseURL:         pc.BaseURL,
				APIKey:          pc.APIKey,
				AccessKeyID:     pc.AccessKeyID,
				SecretAccessKey: pc.SecretAccessKey,
				// Keep the timestamp; only the storage form changes.
				UpdatedAt: pc.UpdatedAt,
			}
			for _, field := range []*string{&arg.APIKey, &arg.AccessKeyID, &arg.SecretAccessKey} {
				// Envelopes from another key are left for a rotation to handle.
				if secretcrypt.IsEncrypted(*field) {
					continue
				}
				enc, err := crypter.Encrypt(ctx, *field)
				if err != nil {
					return xerrors.Errorf("encrypt provider config %q: %w", pc.Name, err)
				}
				*field = enc
			}
			if _, err := tx.UpdateProviderConfig(ctx, arg); err != nil {
				return xerrors.Errorf("update provider config %q: %w", pc.Name, err)
			}
			logger.Debug(ctx, "encrypted provider config", slog.F("name", pc.Name), slog.F("id", pc.ID))
			updated++
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return 0, err
	}
	logger.Info(ctx, "encrypted existing provider configs", slog.F("updated", updated))
	return updated, nil
}

func needsEncryption(pc database.ProviderConfig) bool {
	for _, v := range []string{pc.APIKey, pc.AccessKeyID, pc.SecretAccessKey} {
		if secretcrypt.IsEncrypted(v) {
			continue
		}
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
