package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/xob0t/memocard/pkg/notice"
	"github.com/xob0t/memocard/pkg/settings"
)

func newSettingsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "settings",
		Short:   "Show and edit the memo card settings",
		GroupID: "memo",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(c, c.app.plugin.Settings().Config())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "fields",
		Short: "List the settings form fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.app.plugin.Settings().Config()
			if c.jsonOutput {
				return printJSON(c, settings.Fields())
			}
			w := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tLABEL\tVALUE\tDESCRIPTION")
			for _, f := range settings.Fields() {
				v, _ := cfg.Get(f.Key)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Key, f.Label, v, f.Description)
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Commit one settings field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := c.app.plugin.Settings()
			if err := store.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			v, _ := store.Config().Get(args[0])
			_, err := fmt.Fprintf(c.stdout, "%s = %s\n", args[0], v)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := c.app.plugin.Settings()
			if err := store.Reset(cmd.Context()); err != nil {
				return err
			}
			return printJSON(c, store.Config())
		},
	})
	return cmd
}

// printJSON writes v indented, colored when stdout is a terminal.
func printJSON(c *cli, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = pretty.Pretty(data)
	if f, ok := c.stdout.(*os.File); ok && notice.ShouldUseColor(f) {
		data = pretty.Color(data, nil)
	}
	_, err = c.stdout.Write(data)
	return err
}
