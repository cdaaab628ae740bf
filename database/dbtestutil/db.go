// Package dbtestutil picks a Store implementation for tests.
package dbtestutil

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coder/secretcrypt/cryptorand"
	"github.com/coder/secretcrypt/database"
	"github.com/coder/secretcrypt/database/dbmem"
	"github.com/coder/secretcrypt/database/migrations"
	"github.com/coder/secretcrypt/database/postgres"
)

// WillUsePostgres returns true if a call to NewDB() will return a real,
// postgres-backed Store.
func WillUsePostgres() bool {
	return os.Getenv("DB") != ""
}

// NewDB returns a migrated Store along with the raw connection when backed
// by postgres. With DB unset it returns an in-memory Store and a nil *sql.DB.
//
// Against postgres every call gets its own freshly created database, so
// parallel tests never see each other's rows.
func NewDB(t testing.TB) (database.Store, *sql.DB) {
	t.Helper()

	if !WillUsePostgres() {
		return dbmem.New(), nil
	}

	connectionURL := os.Getenv("SECRETCRYPT_PG_CONNECTION_URL")
	if connectionURL == "" {
		var (
			closePg func()
			err     error
		)
		connectionURL, closePg, err = postgres.Open()
		require.NoError(t, err)
		t.Cleanup(closePg)
	}

	dbURL := createDatabase(t, connectionURL)
	sqlDB, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, migrations.Up(context.Background(), sqlDB))
	return database.New(sqlDB), sqlDB
}

func createDatabase(t testing.TB, connectionURL string) string {
	t.Helper()

	suffix, err := cryptorand.StringCharset(cryptorand.Lower, 10)
	require.NoError(t, err)
	name := "secretcrypt_test_" + suffix

	admin, err := sql.Open("postgres", connectionURL)
	require.NoError(t, err)
	defer admin.Close()
	_, err = admin.Exec(fmt.Sprintf("CREATE DATABASE %s", name))
	require.NoError(t, err, "create database")

	t.Cleanup(func() {
		admin, err := sql.Open("postgres", connectionURL)
		if err != nil {
			return
		}
		defer admin.Close()
		_, _ = admin.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", name))
	})

	u, err := url.Parse(connectionURL)
	require.NoError(t, err)
	u.Path = "/" + name
	return u.String()
}
