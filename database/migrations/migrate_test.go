package migrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/coder/secretcrypt/database/dbtestutil"
	"github.com/coder/secretcrypt/database/migrations"
	"github.com/coder/secretcrypt/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, testutil.GoleakOptions...)
}

func TestStepper(t *testing.T) {
	t.Parallel()

	src, err := migrations.Stepper()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	require.EqualValues(t, 1, first)

	up, name, err := src.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()
	require.Equal(t, "provider_configs", name)
}

func TestMigrate(t *testing.T) {
	t.Parallel()

	if !dbtestutil.WillUsePostgres() {
		t.Skip("test only with postgres")
	}
	ctx := context.Background()

	// NewDB has already applied every migration.
	_, sqlDB := dbtestutil.NewDB(t)
	require.NoError(t, migrations.EnsureClean(ctx, sqlDB))
	require.NoError(t, migrations.Up(ctx, sqlDB))

	require.NoError(t, migrations.Down(ctx, sqlDB))
	require.Error(t, migrations.EnsureClean(ctx, sqlDB))

	require.NoError(t, migrations.Up(ctx, sqlDB))
	require.NoError(t, migrations.EnsureClean(ctx, sqlDB))
}
