package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"cdr.dev/slog/v3"

	"github.com/coder/secretcrypt/database"
	"github.com/coder/secretcrypt/database/dbcrypt"
	"github.com/coder/secretcrypt/redact"
	"github.com/coder/secretcrypt/secretcrypt"
	"github.com/coder/serpent"
)

func (r *RootCmd) providersCmd() *serpent.Command {
	var postgresURL string
	cmd := &serpent.Command{
		Use:   "providers",
		Short: "Manage provider configs whose credentials are stored encrypted.",
		Handler: func(inv *serpent.Invocation) error {
			return inv.Command.HelpHandler(inv)
		},
		Options: serpent.OptionSet{
			{
				Name:        "Postgres Connection URL",
				Description: "URL of the postgres database holding provider configs. When empty, an in-memory store is used.",
				Flag:        "postgres-url",
				Env:         envPostgresURL,
				Value:       serpent.StringOf(&postgresURL),
				Annotations: secretcrypt.SecretAnnotations(),
			},
		},
	}
	cmd.AddSubcommands(
		r.providersList(&postgresURL),
		r.providersSet(&postgresURL),
		r.providersDelete(&postgresURL),
		r.providersEncryptExisting(&postgresURL),
	)
	return cmd
}

// providerSession is the per-invocation state of a providers subcommand.
type providerSession struct {
	logger slog.Logger
	// raw is the unwrapped store; store encrypts and decrypts.
	raw   database.Store
	store database.Store
	close func()
}

func (r *RootCmd) openProviders(inv *serpent.Invocation, postgresURL string) (*providerSession, error) {
	logger, closeLog, err := r.logger(inv)
	if err != nil {
		return nil, err
	}
	crypter, err := r.crypter(logger)
	if err != nil {
		closeLog()
		return nil, err
	}
	raw, closeStore, err := r.openStore(inv.Context(), logger, postgresURL)
	if err != nil {
		closeLog()
		return nil, err
	}
	return &providerSession{
		logger: logger,
		raw:    raw,
		store:  dbcrypt.New(raw, crypter),
		close: func() {
			closeStore()
			closeLog()
		},
	}, nil
}

func (r *RootCmd) providersList(postgresURL *string) *serpent.Command {
	var output string
	return &serpent.Command{
		Use:   "list",
		Short: "List provider configs. Credentials are always masked.",
		Middleware: serpent.Chain(
			serpent.RequireNArgs(0),
		),
		Options: serpent.OptionSet{
			{
				Name:          "Output",
				Description:   "Output format.",
				Flag:          "output",
				FlagShorthand: "o",
				Default:       "table",
				Value:         serpent.EnumOf(&output, "table", "json", "yaml"),
			},
		},
		Handler: func(inv *serpent.Invocation) error {
			s, err := r.openProviders(inv, *postgresURL)
			if err != nil {
				return err
			}
			defer s.close()

			pcs, err := s.store.GetProviderConfigs(inv.Context())
			if err != nil {
				return xerrors.Errorf("get provider configs: %w", err)
			}
			records := make([]map[string]any, 0, len(pcs))
			for _, pc := range pcs {
				records = append(records, redact.Record(pc.Record(), redact.DefaultKeys))
			}

			switch output {
			case "json":
				enc := json.NewEncoder(inv.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			case "yaml":
				enc := yaml.NewEncoder(inv.Stdout)
				defer enc.Close()
				return enc.Encode(records)
			}

			tw := table.NewWriter()
			tw.SetStyle(table.StyleLight)
			tw.Style().Options.SeparateColumns = false
			tw.AppendHeader(table.Row{"Name", "Provider", "Base URL", "API Key", "Access Key ID", "Secret Access Key", "Updated"})
			for _, rec := range records {
				updatedAt, _ := rec["updated_at"].(time.Time)
				tw.AppendRow(table.Row{
					rec["name"],
					rec["provider"],
					rec["base_url"],
					rec["api_key"],
					rec["access_key_id"],
					rec["secret_access_key"],
					humanize.Time(updatedAt),
				})
			}
			_, err = fmt.Fprintln(inv.Stdout, tw.Render())
			return err
		},
	}
}

func (r *RootCmd) providersSet(postgresURL *string) *serpent.Command {
	var (
		provider        string
		baseURL         string
		apiKey          string
		accessKeyID     string
		secretAccessKey string
	)
	return &serpent.Command{
		Use:   "set <name>",
		Short: "Create or update a provider config. Credentials are encrypted before they are stored.",
		Middleware: serpent.Chain(
			serpent.RequireNArgs(1),
		),
		Options: serpent.OptionSet{
			{
				Name:        "Provider",
				Description: "Provider type, e.g. openai, anthropic or bedrock.",
				Flag:        "provider",
				Value:       serpent.StringOf(&provider),
			},
			{
				Name:        "Base URL",
				Description: "Base URL of the provider API.",
				Flag:        "base-url",
				Value:       serpent.StringOf(&baseURL),
			},
			{
				Name:        "API Key",
				Description: "API key for the provider.",
				Flag:        "api-key",
				Value:       serpent.StringOf(&apiKey),
				Annotations: secretcrypt.SecretAnnotations(),
			},
			{
				Name:        "Access Key ID",
				Description: "Access key ID for providers that authenticate with a key pair.",
				Flag:        "access-key-id",
				Value:       serpent.StringOf(&accessKeyID),
				Annotations: secretcrypt.SecretAnnotations(),
			},
			{
				Name:        "Secret Access Key",
				Description: "Secret access key for providers that authenticate with a key pair.",
				Flag:        "secret-access-key",
				Value:       serpent.StringOf(&secretAccessKey),
				Annotations: secretcrypt.SecretAnnotations(),
			},
		},
		Handler: func(inv *serpent.Invocation) error {
			ctx := inv.Context()
			name := inv.Args[0]
			s, err := r.openProviders(inv, *postgresURL)
			if err != nil {
				return err
			}
			defer s.close()

			changed := inv.ParsedFlags().Changed
			var saved database.ProviderConfig
			err = s.store.InTx(func(tx database.Store) error {
				existing, err := tx.GetProviderConfigByName(ctx, name)
				if database.IsNotFound(err) {
					if provider == "" {
						return xerrors.New("--provider is required when creating a provider config")
					}
					now := database.Now()
					arg := database.InsertProviderConfigParams{
						ID:              uuid.New(),
						Name:            name,
						Provider:        provider,
						BaseURL:         baseURL,
						APIKey:          apiKey,
						AccessKeyID:     accessKeyID,
						SecretAccessKey: secretAccessKey,
						CreatedAt:       now,
						UpdatedAt:       now,
					}
					if err := database.Validate(arg); err != nil {
						return err
					}
					saved, err = tx.InsertProviderConfig(ctx, arg)
					if err != nil {
						return xerrors.Errorf("insert provider config: %w", err)
					}
					return nil
				}
				if err != nil {
					return xerrors.Errorf("get provider config: %w", err)
				}

				arg := database.UpdateProviderConfigParams{
					ID:              existing.ID,
					Provider:        existing.Provider,
					BaseURL:         existing.BaseURL,
					APIKey:          existing.APIKey,
					AccessKeyID:     existing.AccessKeyID,
					SecretAccessKey: existing.SecretAccessKey,
					UpdatedAt:       database.Now(),
				}
				// A credential still in envelope form after the read did not open
				// under the current key. Saving it would seal it a second time.
				for _, cred := range []struct {
					flag  string
					value string
				}{
					{"api-key", existing.APIKey},
					{"access-key-id", existing.AccessKeyID},
					{"secret-access-key", existing.SecretAccessKey},
				} {
					if !changed(cred.flag) && secretcrypt.IsEncrypted(cred.value) {
						return xerrors.Errorf("provider config %q has a --%s encrypted with a different key, pass a new value or use the original key", name, cred.flag)
					}
				}
				if changed("provider") {
					arg.Provider = provider
				}
				if changed("base-url") {
					arg.BaseURL = baseURL
				}
				if changed("api-key") {
					arg.APIKey = apiKey
				}
				if changed("access-key-id") {
					arg.AccessKeyID = accessKeyID
				}
				if changed("secret-access-key") {
					arg.SecretAccessKey = secretAccessKey
				}
				if err := database.Validate(arg); err != nil {
					return err
				}
				saved, err = tx.UpdateProviderConfig(ctx, arg)
				if err != nil {
					return xerrors.Errorf("update provider config: %w", err)
				}
				return nil
			}, nil)
			if err != nil {
				if database.IsUniqueViolation(err) {
					return xerrors.Errorf("provider config %q already exists", name)
				}
				return err
			}

			s.logger.Info(ctx, "saved provider config", redact.Fields(saved.Record(), redact.DefaultKeys)...)
			_, err = fmt.Fprintf(inv.Stdout, "Saved provider config %q.\n", saved.Name)
			return err
		},
	}
}

func (r *RootCmd) providersDelete(postgresURL *string) *serpent.Command {
	return &serpent.Command{
		Use:   "delete <name>",
		Short: "Delete a provider config.",
		Middleware: serpent.Chain(
			serpent.RequireNArgs(1),
		),
		Handler: func(inv *serpent.Invocation) error {
			ctx := inv.Context()
			name := inv.Args[0]
			s, err := r.openProviders(inv, *postgresURL)
			if err != nil {
				return err
			}
			defer s.close()

			// Only the ID is needed, so read through the raw store and skip
			// decryption.
			pc, err := s.raw.GetProviderConfigByName(ctx, name)
			if database.IsNotFound(err) {
				return xerrors.Errorf("provider config %q not found", name)
			}
			if err != nil {
				return xerrors.Errorf("get provider config: %w", err)
			}
			if err := s.store.DeleteProviderConfig(ctx, pc.ID); err != nil {
				return xerrors.Errorf("delete provider config: %w", err)
			}
			s.logger.Info(ctx, "deleted provider config", slog.F("name", pc.Name), slog.F("id", pc.ID))
			_, err = fmt.Fprintf(inv.Stdout, "Deleted provider config %q.\n", pc.Name)
			return err
		},
	}
}

func (r *RootCmd) providersEncryptExisting(postgresURL *string) *serpent.Command {
	return &serpent.Command{
		Use:   "encrypt-existing",
		Short: "Encrypt credentials of provider configs that were stored before a key was configured.",
		Middleware: serpent.Chain(
			serpent.RequireNArgs(0),
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
			raw, closeStore, err := r.openStore(ctx, logger, *postgresURL)
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := dbcrypt.EncryptAll(ctx, logger, raw, crypter)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(inv.Stdout, "Encrypted %d provider config(s).\n", n)
			return err
		},
	}
}
