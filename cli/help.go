package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/coder/secretcrypt/secretcrypt"
	"github.com/coder/serpent"
)

// helpFn prints usage for cmd: its synopsis, subcommands and the flags it
// accepts, including those inherited from parents.
func helpFn(cmd *serpent.Command) serpent.HandlerFunc {
	return func(inv *serpent.Invocation) error {
		return writeUsage(inv.Stderr, cmd)
	}
}

func writeUsage(w io.Writer, cmd *serpent.Command) error {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "Usage: %s\n\n", cmd.FullUsage())
	if cmd.Short != "" {
		_, _ = fmt.Fprintf(&b, "%s\n", cmd.Short)
	}
	if cmd.Long != "" {
		_, _ = fmt.Fprintf(&b, "\n%s\n", cmd.Long)
	}

	if len(cmd.Children) > 0 {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleLight)
		tw.Style().Options = table.OptionsNoBordersAndSeparators
		for _, child := range cmd.Children {
			if child.Hidden {
				continue
			}
			tw.AppendRow(table.Row{child.Name(), child.Short})
		}
		_, _ = fmt.Fprintf(&b, "\nSubcommands\n%s\n", indent(tw.Render()))
	}

	var opts serpent.OptionSet
	for c := cmd; c != nil; c = c.Parent {
		opts = append(opts, c.Options...)
	}
	if len(opts) > 0 {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleLight)
		tw.Style().Options = table.OptionsNoBordersAndSeparators
		for _, opt := range opts {
			if opt.Flag == "" || opt.Hidden {
				continue
			}
			flag := "--" + opt.Flag
			if opt.FlagShorthand != "" {
				flag = "-" + opt.FlagShorthand + ", " + flag
			}
			if opt.Env != "" {
				flag += ", $" + opt.Env
			}
			desc := opt.Description
			// Defaults of secret options are never shown.
			if opt.Default != "" && !secretcrypt.IsSecretOption(opt) {
				desc += fmt.Sprintf(" (default: %s)", opt.Default)
			}
			tw.AppendRow(table.Row{flag, desc})
		}
		_, _ = fmt.Fprintf(&b, "\nOptions\n%s\n", indent(tw.Render()))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}
