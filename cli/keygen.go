package cli

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"golang.org/x/xerrors"

	"github.com/coder/secretcrypt/cryptorand"
	"github.com/coder/secretcrypt/secretcrypt"
	"github.com/coder/serpent"
)

const maxKeygenLength = 1024

func (*RootCmd) keygenCmd() *serpent.Command {
	var (
		length int64
		out    string
	)
	return &serpent.Command{
		Use:   "keygen",
		Short: "Generate a random operator secret suitable for " + secretcrypt.EnvEncryptionKey + ".",
		Middleware: serpent.Chain(
			serpent.RequireNArgs(0),
		),
		Options: serpent.OptionSet{
			{
				Name:        "Length",
				Description: "Number of characters in the generated secret.",
				Flag:        "length",
				Default:     "48",
				Value:       serpent.Int64Of(&length),
			},
			{
				Name:        "Output File",
				Description: "Write the secret to this file with 0600 permissions instead of stdout. The file is replaced atomically.",
				Flag:        "out",
				Value:       serpent.StringOf(&out),
			},
		},
		Handler: func(inv *serpent.Invocation) error {
			if length < secretcrypt.MinSecretLength {
				return xerrors.Errorf("length must be at least %d, got %d", secretcrypt.MinSecretLength, length)
			}
			if length > maxKeygenLength {
				return xerrors.Errorf("length must be at most %d, got %d", maxKeygenLength, length)
			}
			secret, err := cryptorand.SecretString(int(length))
			if err != nil {
				return xerrors.Errorf("generate secret: %w", err)
			}
			if out == "" {
				_, err = fmt.Fprintln(inv.Stdout, secret)
				return err
			}

			// atomic.WriteFile gives the new file the mode of the one it
			// replaces, so tighten an existing file before writing.
			if err := os.Chmod(out, 0o600); err != nil && !xerrors.Is(err, fs.ErrNotExist) {
				return xerrors.Errorf("chmod %s: %w", out, err)
			}
			if err := atomic.WriteFile(out, strings.NewReader(secret+"\n")); err != nil {
				return xerrors.Errorf("write %s: %w", out, err)
			}
			if err := os.Chmod(out, 0o600); err != nil {
				return xerrors.Errorf("chmod %s: %w", out, err)
			}
			_, err = fmt.Fprintf(inv.Stdout, "Wrote a %d character secret to %s.\n", length, out)
			return err
		},
	}
}
