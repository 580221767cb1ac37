package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xob0t/memocard/pkg/style"
)

func newStyleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "style",
		Short:   "Print the style descriptor resolved from the settings",
		GroupID: "memo",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := style.Resolve(c.app.plugin.Settings().Config())
			if c.jsonOutput {
				return printJSON(c, desc)
			}
			_, err := fmt.Fprintln(c.stdout, desc.CSS())
			return err
		},
	}
}
