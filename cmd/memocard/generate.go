package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xob0t/memocard/pkg/memo"
	"github.com/xob0t/memocard/pkg/notice"
	"github.com/xob0t/memocard/pkg/vault"
	"github.com/xob0t/memocard/pkg/workspace"
)

type generateOptions struct {
	text    string
	file    string
	from    int
	to      int
	dryRun  bool
	hasText bool
}

func newGenerateCmd(c *cli) *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Generate a PNG memo from the selected text",
		GroupID: "memo",
		Long: `Generate renders text into a memo card and saves it as
memos/memo-<unix-millis>.png under the storage root.

The selection comes from --text, from a rune range of --file, or from
standard input when it is not a terminal. With none of these there is
no active editor and nothing is generated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.hasText = cmd.Flags().Changed("text")
			ws, err := opts.workspace(c.stdin)
			if err != nil {
				return err
			}

			plugin, notifier := c.app.plugin, c.app.notifier
			if opts.dryRun {
				if plugin, err = c.app.withFS(vault.NewMemFS()); err != nil {
					return err
				}
				notifier = notice.Func(func(msg string) {
					c.app.notifier.Notify("[dry run] " + msg)
				})
			}

			res, err := plugin.Generate(cmd.Context(), ws, notifier)
			if err != nil {
				return reportedError{err}
			}
			return printResult(c, res, opts.dryRun)
		},
	}
	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "text to render")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read the editor buffer from a file")
	cmd.Flags().IntVar(&opts.from, "from", 0, "selection start, in runes (with --file)")
	cmd.Flags().IntVar(&opts.to, "to", -1, "selection end, in runes; -1 for end of file (with --file)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "render and encode without writing the file")
	cmd.MarkFlagsMutuallyExclusive("text", "file")
	return cmd
}

// workspace maps the command's input onto an editor and its selection.
func (o generateOptions) workspace(stdin io.Reader) (workspace.Workspace, error) {
	switch {
	case o.hasText:
		return workspace.Static{Editor: workspace.Text(o.text)}, nil
	case o.file != "":
		data, err := os.ReadFile(o.file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", o.file, err)
		}
		buf := workspace.NewBuffer(string(data))
		to := o.to
		if to < 0 {
			to = buf.Len()
		}
		buf.Select(o.from, to)
		return workspace.Static{Editor: buf}, nil
	}

	if stdin == nil || isTerminal(stdin) {
		return workspace.None, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r")
	return workspace.Static{Editor: workspace.Text(text)}, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printResult(c *cli, res memo.Result, dryRun bool) error {
	if c.jsonOutput {
		return printJSON(c, struct {
			memo.Result
			DryRun bool `json:"dryRun,omitempty"`
		}{res, dryRun})
	}
	if dryRun {
		_, err := fmt.Fprintf(c.stdout, "%s (dry run, %d bytes, %dx%d)\n", res.Path, res.Bytes, res.Width, res.Height)
		return err
	}
	_, err := fmt.Fprintln(c.stdout, res.Path)
	return err
}
