package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xob0t/memocard/pkg/config"
)

func newInitCmd(c *cli) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Write a sample configuration file",
		GroupID: "system",
		Args:    cobra.NoArgs,
		// No plugin is needed to write the sample.
		PersistentPreRunE:  noApp,
		PersistentPostRunE: noApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteSample(c.configPath, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(c.stdout, "Wrote %s\n", c.configPath)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
