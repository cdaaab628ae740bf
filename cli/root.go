// Package cli implements the secretcrypt command line.
package cli

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"time"

	"github.com/coder/retry"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/xerrors"

	"cdr.dev/slog/v3"

	"github.com/coder/secretcrypt/cli/clilog"
	"github.com/coder/secretcrypt/database"
	"github.com/coder/secretcrypt/database/dbmem"
	"github.com/coder/secretcrypt/database/migrations"
	"github.com/coder/secretcrypt/secretcrypt"
	"github.com/coder/serpent"
)

const (
	envPostgresURL = "SECRETCRYPT_PG_CONNECTION_URL"
	connectTimeout = 30 * time.Second
)

// RootCmd holds state shared by every subcommand.
type RootCmd struct {
	crypt   secretcrypt.Config
	logging *clilog.Builder

	// Store replaces the store the providers commands open. Tests set it
	// to share one in-memory store across invocations.
	Store database.Store
	// Registerer receives crypter metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
}

func (r *RootCmd) Command() *serpent.Command {
	if r.logging == nil {
		r.logging = clilog.New()
	}
	cmd := &serpent.Command{
		Use:   "secretcrypt",
		Short: "Encrypt secrets at rest and redact them from output.",
		Long: "Values are sealed into enc:<version>:<payload> envelopes with a key derived from " +
			secretcrypt.EnvEncryptionKey + " (or " + secretcrypt.EnvFallbackKey + "). " +
			"Without a key, values pass through unchanged.",
		Handler: func(inv *serpent.Invocation) error {
			return inv.Command.HelpHandler(inv)
		},
		Children: []*serpent.Command{
			r.encryptCmd(),
			r.decryptCmd(),
			r.redactCmd(),
			r.keygenCmd(),
			r.providersCmd(),
			r.versionCmd(),
		},
	}
	cmd.Options = append(cmd.Options, r.crypt.Options()...)
	cmd.Options = append(cmd.Options, r.logging.Options()...)

	// Set default help handler for all commands.
	cmd.Walk(func(c *serpent.Command) {
		if c.HelpHandler == nil {
			c.HelpHandler = helpFn(c)
		}
	})
	return cmd
}

// logger builds the logger for one invocation. The returned func flushes
// and closes file sinks.
func (r *RootCmd) logger(inv *serpent.Invocation) (slog.Logger, func(), error) {
	logger, closeLog, err := r.logging.Build(inv)
	if err != nil {
		return slog.Logger{}, nil, xerrors.Errorf("build logger: %w", err)
	}
	return logger, closeLog, nil
}

func (r *RootCmd) crypter(logger slog.Logger) (*secretcrypt.Crypter, error) {
	c, err := secretcrypt.New(secretcrypt.Options{
		Secret:     r.crypt.ActiveSecret(),
		Version:    r.crypt.Version,
		Strict:     r.crypt.Strict,
		Logger:     logger,
		Registerer: r.Registerer,
	})
	if err != nil {
		return nil, xerrors.Errorf("create crypter: %w", err)
	}
	return c, nil
}

// openStore returns the unwrapped store along with a close func. An empty
// postgresURL selects an in-memory store that lives for one invocation.
func (r *RootCmd) openStore(ctx context.Context, logger slog.Logger, postgresURL string) (database.Store, func(), error) {
	if r.Store != nil {
		return r.Store, func() {}, nil
	}
	if postgresURL == "" {
		logger.Warn(ctx, "no postgres url configured, using an in-memory store that is discarded on exit",
			slog.F("env", envPostgresURL),
		)
		return dbmem.New(), func() {}, nil
	}

	sqlDB, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, nil, xerrors.Errorf("open postgres: %w", err)
	}
	if err := pingWithRetry(ctx, logger, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	if err := migrations.Up(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, nil, xerrors.Errorf("migrate: %w", err)
	}
	logger.Debug(ctx, "connected to postgres")
	return database.New(sqlDB), func() { _ = sqlDB.Close() }, nil
}

// pingWithRetry waits for postgres to accept connections, giving up after
// connectTimeout.
func pingWithRetry(ctx context.Context, logger slog.Logger, sqlDB *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var err error
	for r := retry.New(250*time.Millisecond, 5*time.Second); r.Wait(ctx); {
		err = sqlDB.PingContext(ctx)
		if err == nil {
			return nil
		}
		logger.Warn(ctx, "ping postgres", slog.Error(err))
	}
	if err == nil {
		err = ctx.Err()
	}
	return xerrors.Errorf("ping postgres: %w", err)
}

// readValue returns the single argument, or stdin with the trailing newline
// removed when no argument is given.
func readValue(inv *serpent.Invocation) (string, error) {
	if len(inv.Args) > 0 {
		return inv.Args[0], nil
	}
	data, err := io.ReadAll(inv.Stdin)
	if err != nil {
		return "", xerrors.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
