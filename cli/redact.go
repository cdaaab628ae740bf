package cli

import (
	"encoding/json"

	"golang.org/x/xerrors"

	"github.com/coder/secretcrypt/redact"
	"github.com/coder/serpent"
)

func (*RootCmd) redactCmd() *serpent.Command {
	var (
		keys        []string
		replaceKeys bool
	)
	return &serpent.Command{
		Use:   "redact",
		Short: "Read a JSON object from stdin and print it with sensitive values masked.",
		Middleware: serpent.Chain(
			serpent.RequireNArgs(0),
		),
		Options: serpent.OptionSet{
			{
				Name:        "Keys",
				Description: "Additional field names to mask. Names are matched case-insensitively in snake, camel or kebab case.",
				Flag:        "keys",
				Value:       serpent.StringArrayOf(&keys),
			},
			{
				Name:        "Replace Default Keys",
				Description: "Mask only the fields given by --keys instead of adding them to the defaults.",
				Flag:        "replace-default-keys",
				Default:     "false",
				Value:       serpent.BoolOf(&replaceKeys),
			},
		},
		Handler: func(inv *serpent.Invocation) error {
			var record map[string]any
			dec := json.NewDecoder(inv.Stdin)
			dec.UseNumber()
			if err := dec.Decode(&record); err != nil {
				return xerrors.Errorf("decode JSON object from stdin: %w", err)
			}
			if record == nil {
				return xerrors.New("expected a JSON object on stdin")
			}

			keySet := redact.DefaultKeys.Union(redact.NewKeySet(keys...))
			if replaceKeys {
				if len(keys) == 0 {
					return xerrors.New("--replace-default-keys requires --keys")
				}
				keySet = redact.NewKeySet(keys...)
			}

			enc := json.NewEncoder(inv.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(redact.Record(record, keySet))
		},
	}
}
