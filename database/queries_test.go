package database_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/xerrors"

	"github.com/coder/secretcrypt/database"
	"github.com/coder/secretcrypt/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, testutil.GoleakOptions...)
}

var providerConfigColumns = []string{
	"id", "name", "provider", "base_url", "api_key", "access_key_id", "secret_access_key", "created_at", "updated_at",
}

func newMock(t *testing.T) (database.Store, sqlmock.Sqlmock) {
	t.Helper()
	sdb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = sdb.Close()
	})
	return database.New(sdb), mock
}

func TestGetProviderConfigByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		id := uuid.New()
		now := database.Now()
		mock.ExpectQuery(regexp.QuoteMeta("FROM provider_configs\nWHERE id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(providerConfigColumns).
				AddRow(id.String(), "openai", "openai", "", "enc:v1:abc", "", "", now, now))

		pc, err := db.GetProviderConfigByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, pc.ID)
		assert.Equal(t, "openai", pc.Name)
		assert.Equal(t, "enc:v1:abc", pc.APIKey)
		assert.True(t, now.Equal(pc.CreatedAt))
	})

	t.Run("NotFound", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		id := uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(providerConfigColumns))

		_, err := db.GetProviderConfigByID(ctx, id)
		require.ErrorIs(t, err, sql.ErrNoRows)
		assert.True(t, database.IsNotFound(err))
	})
}

func TestGetProviderConfigs(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	now := database.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name ASC")).
		WillReturnRows(sqlmock.NewRows(providerConfigColumns).
			AddRow(uuid.NewString(), "a", "openai", "", "", "", "", now, now).
			AddRow(uuid.NewString(), "b", "bedrock", "", "", "AKIA", "secret", now, now))

	pcs, err := db.GetProviderConfigs(context.Background())
	require.NoError(t, err)
	require.Len(t, pcs, 2)
	assert.Equal(t, "b", pcs[1].Name)
	assert.Equal(t, "AKIA", pcs[1].AccessKeyID)
}

func TestInsertProviderConfig(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	arg := database.InsertProviderConfigParams{
		ID:        uuid.New(),
		Name:      "openai",
		Provider:  "openai",
		APIKey:    "enc:v1:abc",
		CreatedAt: database.Now(),
		UpdatedAt: database.Now(),
	}

	t.Run("OK", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO provider_configs")).
			WithArgs(arg.ID, arg.Name, arg.Provider, arg.BaseURL, arg.APIKey, arg.AccessKeyID, arg.SecretAccessKey, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(providerConfigColumns).
				AddRow(arg.ID.String(), arg.Name, arg.Provider, arg.BaseURL, arg.APIKey, "", "", arg.CreatedAt, arg.UpdatedAt))

		pc, err := db.InsertProviderConfig(ctx, arg)
		require.NoError(t, err)
		assert.Equal(t, arg.APIKey, pc.APIKey)
	})

	t.Run("UniqueViolation", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO provider_configs")).
			WillReturnError(&pq.Error{
				Code:       "23505",
				Constraint: string(database.UniqueProviderConfigsLowerName),
			})

		_, err := db.InsertProviderConfig(ctx, arg)
		require.Error(t, err)
		assert.True(t, database.IsUniqueViolation(err))
		assert.True(t, database.IsUniqueViolation(err, database.UniqueProviderConfigsLowerName))
		assert.False(t, database.IsUniqueViolation(err, database.UniqueProviderConfigsPkey))
	})
}

func TestDeleteProviderConfig(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM provider_configs")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, db.DeleteProviderConfig(context.Background(), id))
}

func TestInTx(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		id := uuid.New()
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM provider_configs")).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := db.InTx(func(tx database.Store) error {
			// Nested transactions reuse the outer one.
			return tx.InTx(func(tx database.Store) error {
				return tx.DeleteProviderConfig(ctx, id)
			}, nil)
		}, nil)
		require.NoError(t, err)
	})

	t.Run("Rollback", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		sentinel := xerrors.New("boom")
		err := db.InTx(func(database.Store) error {
			return sentinel
		}, nil)
		require.ErrorIs(t, err, sentinel)
	})
}

func TestPing(t *testing.T) {
	t.Parallel()
	sdb, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sdb.Close()
	mock.ExpectPing()

	d, err := database.New(sdb).Ping(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, time.Duration(0))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderConfigRecord(t *testing.T) {
	t.Parallel()
	pc := database.ProviderConfig{
		ID:     uuid.New(),
		Name:   "openai",
		APIKey: "sk-123",
	}
	rec := pc.Record()
	assert.Equal(t, pc.ID.String(), rec["id"])
	assert.Equal(t, "sk-123", rec["api_key"])
	assert.Contains(t, rec, "secret_access_key")
}
