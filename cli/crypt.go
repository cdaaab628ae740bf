package cli

import (
	"fmt"

	"golang.org/x/xerrors"

	"cdr.dev/slog/v3"

	"github.com/coder/secretcrypt/secretcrypt"
	"github.com/coder/serpent"
)

func (r *RootCmd) encryptCmd() *serpent.Command {
	return &serpent.Command{
		Use:   "encrypt [value]",
		Short: "Encrypt a value. Reads stdin when no value is given.",
		Middleware: serpent.Chain(
			serpent.RequireRangeArgs(0, 1),
		),
		Handler: func(inv *serpent.Invocation) error {
			ctx := inv.Context()
			logger, closeLog, err := r.logger(inv)
			if err != nil {
				return err
			}
			defer closeLog()

			crypter, err := r.crypter(logger)
			if err != nil {
				return err
			}
			value, err := readValue(inv)
			if err != nil {
				return err
			}
			out, err := crypter.Encrypt(ctx, value)
			if err != nil {
				return xerrors.Errorf("encrypt: %w", err)
			}
			if !crypter.Enabled() {
				logger.Warn(ctx, "encryption is disabled, value printed unchanged",
					slog.F("min_length", secretcrypt.MinSecretLength),
				)
			}
			_, err = fmt.Fprintln(inv.Stdout, out)
			return err
		},
	}
}

func (r *RootCmd) decryptCmd() *serpent.Command {
	return &serpent.Command{
		Use:   "decrypt [value]",
		Short: "Decrypt a value. Reads stdin when no value is given.",
		Middleware: serpent.Chain(
			serpent.RequireRangeArgs(0, 1),
		),
		Handler: func(inv *serpent.Invocation) error {
			ctx := inv.Context()
			logger, closeLog, err := r.logger(inv)
			if err != nil {
				return err
			}
			defer closeLog()

			crypter, err := r.crypter(logger)
			if err != nil {
				return err
			}
			value, err := readValue(inv)
			if err != nil {
				return err
			}
			out, err := crypter.Decrypt(ctx, value)
			if err != nil {
				return xerrors.Errorf("decrypt: %w", err)
			}
			_, err = fmt.Fprintln(inv.Stdout, out)
			return err
		},
	}
}
