package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xob0t/memocard/pkg/card"
	"github.com/xob0t/memocard/pkg/config"
	"github.com/xob0t/memocard/pkg/datastore"
	"github.com/xob0t/memocard/pkg/memo"
	"github.com/xob0t/memocard/pkg/notice"
	"github.com/xob0t/memocard/pkg/raster"
	"github.com/xob0t/memocard/pkg/settings"
	"github.com/xob0t/memocard/pkg/vault"
)

// app is the wired plugin plus the resources it holds open.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	plugin   *memo.Plugin
	notifier notice.Notifier
	closers  []func() error
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, stderr io.Writer) (*app, error) {
	a := &app{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	slot, err := a.dataSlot()
	if err != nil {
		return nil, err
	}
	fsys, err := a.fileSystem(ctx)
	if err != nil {
		return nil, err
	}
	a.notifier, err = a.notifiers(stderr)
	if err != nil {
		return nil, err
	}

	rasterizer := raster.New(raster.Options{
		ViewportWidth: cfg.Render.ViewportWidth,
		Scale:         cfg.Render.Scale,
		Fonts:         raster.NewFontManager(cfg.Render.Fonts, logger),
		Logger:        logger,
	})

	a.plugin, err = memo.New(memo.Options{
		Store:    settings.NewStore(slot, logger),
		FS:       fsys,
		Renderer: card.NewRenderer(rasterizer, nil, logger),
		Notifier: a.notifier,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	ok = true
	return a, nil
}

func (a *app) dataSlot() (settings.DataSlot, error) {
	switch strings.ToLower(a.cfg.Settings.Backend) {
	case "postgres":
		slot, err := datastore.NewPostgresSlot(a.cfg.Settings.DatabaseURL, a.cfg.Settings.PluginID)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, slot.Close)
		a.logger.Debug("settings stored in postgres", "plugin_id", a.cfg.Settings.PluginID)
		return slot, nil
	default:
		a.logger.Debug("settings stored in file", "path", a.cfg.Settings.Path)
		return &datastore.FileSlot{Path: a.cfg.Settings.Path}, nil
	}
}

func (a *app) fileSystem(ctx context.Context) (vault.FileSystem, error) {
	switch strings.ToLower(a.cfg.Storage.Backend) {
	case "s3":
		fsys, err := vault.NewS3FS(ctx, vault.S3Options{
			Bucket:   a.cfg.Storage.S3Bucket,
			Region:   a.cfg.Storage.S3Region,
			Endpoint: a.cfg.Storage.S3Endpoint,
			Prefix:   a.cfg.Storage.S3Prefix,
		})
		if err != nil {
			return nil, err
		}
		a.logger.Debug("memos stored in s3", "bucket", a.cfg.Storage.S3Bucket, "prefix", a.cfg.Storage.S3Prefix)
		return fsys, nil
	default:
		return vault.LocalFS{Root: a.cfg.StorageRoot}, nil
	}
}

func (a *app) notifiers(stderr io.Writer) (notice.Notifier, error) {
	var out notice.Multi
	if !a.cfg.Notify.Quiet {
		if f, isFile := stderr.(*os.File); isFile {
			out = append(out, notice.NewConsole(f))
		} else {
			out = append(out, notice.NewConsoleWriter(stderr, false))
		}
	}
	if a.cfg.Notify.NATSURL != "" {
		n, err := notice.NewNATS(a.cfg.Notify.NATSURL, a.cfg.Notify.Subject, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, n.Close)
		a.logger.Info("notices published to NATS", "nats_url", a.cfg.Notify.NATSURL, "subject", a.cfg.Notify.Subject)
		out = append(out, n)
	}
	return out, nil
}

// withFS returns a plugin sharing a's settings and renderer but writing to
// fsys.
func (a *app) withFS(fsys vault.FileSystem) (*memo.Plugin, error) {
	return memo.New(memo.Options{
		Store:    a.plugin.Settings(),
		FS:       fsys,
		Renderer: a.plugin.Renderer(),
		Encoder:  a.plugin.Encoder(),
		Notifier: a.notifier,
		Logger:   a.logger,
	})
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("closing resource", "err", err)
		}
	}
	a.closers = nil
}
