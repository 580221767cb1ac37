package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xob0t/memocard/clients/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var (
		addr string
		open bool
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the memo command and settings panel over HTTP",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.app.cfg.Server.Addr
			}
			srv, err := server.New(c.app.plugin, c.app.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if open {
				go openPanel(ctx, c, addr)
			}
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&open, "open", false, "open the settings panel in a browser")
	return cmd
}

func openPanel(ctx context.Context, c *cli, addr string) {
	if ctx.Err() != nil {
		return
	}
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	if err := server.OpenBrowser("http://" + host); err != nil {
		c.app.logger.Warn("could not open browser", "err", err)
	}
}
