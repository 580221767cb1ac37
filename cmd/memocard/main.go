// memocard renders selected text into styled PNG memo cards.
//
// Usage:
//
//	memocard generate [--text <s> | --file <path> [--from N --to M]] [--dry-run]
//	memocard settings show|fields|set <key> <value>|reset
//	memocard style
//	memocard serve [--addr :8080] [--open]
//	memocard init [--force]
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xob0t/memocard/pkg/config"
)

// reportedError marks failures the user already saw as a notice.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// cli carries state shared by the command tree for one invocation.
type cli struct {
	configPath string
	logLevel   string
	jsonOutput bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	app *app
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "memocard <command>",
		Short:         "Render selected text into styled PNG memo cards",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.start(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.stop(cmd)
		},
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	root.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultFile, "host configuration file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "output as JSON")

	root.AddGroup(
		&cobra.Group{ID: "memo", Title: "Memos:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	cobra.EnableCommandSorting = false

	root.AddCommand(newGenerateCmd(c))
	root.AddCommand(newSettingsCmd(c))
	root.AddCommand(newStyleCmd(c))
	root.AddCommand(newServeCmd(c))
	root.AddCommand(newInitCmd(c))
	return root
}

// start loads configuration, wires the plugin and activates it.
func (c *cli) start(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	logger, err := config.NewLogger(c.stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	a, err := buildApp(cmd.Context(), cfg, logger, c.stderr)
	if err != nil {
		return err
	}
	c.app = a
	return a.plugin.Initialize(cmd.Context())
}

// stop deactivates the plugin, persisting settings.
func (c *cli) stop(cmd *cobra.Command) error {
	if c.app == nil {
		return nil
	}
	err := c.app.plugin.Shutdown(cmd.Context())
	c.app.close()
	c.app = nil
	return err
}

// noApp replaces the root pre-run for commands that need no plugin.
func noApp(*cobra.Command, []string) error { return nil }

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCmd(c)
	root.SetArgs(args)

	err := root.Execute()
	if c.app != nil {
		// RunE failed, so the post-run hook was skipped.
		if stopErr := c.stop(root); stopErr != nil && err == nil {
			err = stopErr
		}
	}
	if err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
