package dbmem_test

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/xerrors"

	"github.com/coder/secretcrypt/database"
	"github.com/coder/secretcrypt/database/dbmem"
	"github.com/coder/secretcrypt/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, testutil.GoleakOptions...)
}

func TestProviderConfigs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	clock := quartz.NewMock(t)
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock.Set(start)
	db := dbmem.NewWithClock(clock)

	pc, err := db.InsertProviderConfig(ctx, database.InsertProviderConfigParams{
		ID:       uuid.New(),
		Name:     "OpenAI",
		Provider: "openai",
		APIKey:   "sk-123",
	})
	require.NoError(t, err)
	assert.Equal(t, start, pc.CreatedAt)
	assert.Equal(t, start, pc.UpdatedAt)

	_, err = db.InsertProviderConfig(ctx, database.InsertProviderConfigParams{
		ID:   uuid.New(),
		Name: "openai",
	})
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err, database.UniqueProviderConfigsLowerName))

	got, err := db.GetProviderConfigByName(ctx, "OPENAI")
	require.NoError(t, err)
	assert.Equal(t, pc, got)

	clock.Advance(time.Minute)
	updated, err := db.UpdateProviderConfig(ctx, database.UpdateProviderConfigParams{
		ID:       pc.ID,
		Provider: "openai",
		APIKey:   "sk-456",
	})
	require.NoError(t, err)
	assert.Equal(t, "sk-456", updated.APIKey)
	assert.Equal(t, start.Add(time.Minute), updated.UpdatedAt)
	assert.Equal(t, start, updated.CreatedAt)

	_, err = db.UpdateProviderConfig(ctx, database.UpdateProviderConfigParams{ID: uuid.New()})
	assert.True(t, database.IsNotFound(err))

	require.NoError(t, db.DeleteProviderConfig(ctx, pc.ID))
	_, err = db.GetProviderConfigByID(ctx, pc.ID)
	assert.True(t, database.IsNotFound(err))
}

func TestGetProviderConfigsSorted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := dbmem.New()
	for _, name := range []string{"c", "a", "b"} {
		_, err := db.InsertProviderConfig(ctx, database.InsertProviderConfigParams{ID: uuid.New(), Name: name})
		require.NoError(t, err)
	}
	pcs, err := db.GetProviderConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, pcs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{pcs[0].Name, pcs[1].Name, pcs[2].Name})
}

func TestInTx(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		t.Parallel()
		db := dbmem.New()
		err := db.InTx(func(tx database.Store) error {
			_, err := tx.InsertProviderConfig(ctx, database.InsertProviderConfigParams{ID: uuid.New(), Name: "a"})
			return err
		}, nil)
		require.NoError(t, err)
		pcs, err := db.GetProviderConfigs(ctx)
		require.NoError(t, err)
		assert.Len(t, pcs, 1)
	})

	t.Run("Rollback", func(t *testing.T) {
		t.Parallel()
		db := dbmem.New()
		sentinel := xerrors.New("boom")
		err := db.InTx(func(tx database.Store) error {
			_, err := tx.InsertProviderConfig(ctx, database.InsertProviderConfigParams{ID: uuid.New(), Name: "a"})
			require.NoError(t, err)
			return sentinel
		}, nil)
		require.ErrorIs(t, err, sentinel)
		pcs, err := db.GetProviderConfigs(ctx)
		require.NoError(t, err)
		assert.Empty(t, pcs)
	})
}
