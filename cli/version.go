package cli

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/coder/secretcrypt/buildinfo"
	"github.com/coder/secretcrypt/secretcrypt"
	"github.com/coder/serpent"
)

func (*RootCmd) versionCmd() *serpent.Command {
	var output string
	return &serpent.Command{
		Use:   "version",
		Short: "Show version information.",
		Middleware: serpent.Chain(
			serpent.RequireNArgs(0),
		),
		Options: serpent.OptionSet{
			{
				Name:          "Output",
				Description:   "Output format.",
				Flag:          "output",
				FlagShorthand: "o",
				Default:       "text",
				Value:         serpent.EnumOf(&output, "text", "json", "yaml"),
			},
		},
		Handler: func(inv *serpent.Invocation) error {
			info := buildinfo.Info{
				Version:        buildinfo.Version(),
				ExternalURL:    buildinfo.ExternalURL(),
				CipherVersions: secretcrypt.Versions,
			}
			if t, ok := buildinfo.Time(); ok {
				info.BuildTime = t
			}
			switch output {
			case "json":
				enc := json.NewEncoder(inv.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case "yaml":
				enc := yaml.NewEncoder(inv.Stdout)
				defer enc.Close()
				return enc.Encode(info)
			}
			_, err := fmt.Fprintf(inv.Stdout, "secretcrypt %s\n%s\n", info.Version, info.ExternalURL)
			return err
		},
	}
}
