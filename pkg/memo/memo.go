// Package memo is the PNG memo plugin: one command that turns the selected
// text of the active editor into a styled card image saved under memos/.
//
// The host drives the lifecycle with Initialize and Shutdown. Everything a
// generation needs (workspace, notifier, configuration snapshot) is passed
// in explicitly, so concurrent invocations share no mutable state beyond the
// render tree, where each mounts and removes its own element.
package memo

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/xob0t/memocard/pkg/card"
	"github.com/xob0t/memocard/pkg/generator"
	"github.com/xob0t/memocard/pkg/notice"
	"github.com/xob0t/memocard/pkg/raster"
	"github.com/xob0t/memocard/pkg/settings"
	"github.com/xob0t/memocard/pkg/style"
	"github.com/xob0t/memocard/pkg/vault"
	"github.com/xob0t/memocard/pkg/workspace"
)

const (
	CommandID   = "generate-png-memo"
	CommandName = "Generate PNG Memo"

	// OutputDir is the directory under the storage root memos are written to.
	OutputDir = "memos"
)

var (
	ErrNoActiveEditor = errors.New("memo: no active editor")
	ErrNoSelection    = errors.New("memo: empty selection")
)

// User-visible notices.
const (
	msgNoActiveEditor = "No active editor found."
	msgNoSelection    = "Please select some text first."
	msgRenderFailed   = "Failed to render memo: %v"
	msgEncodeFailed   = "Failed to encode memo: %v"
	msgSaveFailed     = "Failed to save memo: %v"
	msgSaved          = "Memo saved to %s"
)

// Command is a registered, argument-less plugin command.
type Command struct {
	ID   string
	Name string
	Run  func(ctx context.Context) error
}

// Options wires a Plugin. Store and FS are required; the rest default.
type Options struct {
	Store     *settings.Store
	FS        vault.FileSystem
	Renderer  *card.Renderer
	Encoder   generator.Encoder
	Workspace workspace.Workspace
	Notifier  notice.Notifier
	Logger    *slog.Logger
	Clock     func() time.Time
}

// Plugin owns the settings lifecycle and the generate command.
type Plugin struct {
	store     *settings.Store
	fs        vault.FileSystem
	renderer  *card.Renderer
	encoder   generator.Encoder
	workspace workspace.Workspace
	notifier  notice.Notifier
	logger    *slog.Logger
	names     *nameSource
}

// Result describes a saved memo.
type Result struct {
	Path   string `json:"path"`
	Bytes  int    `json:"bytes"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// New creates a plugin.
func New(opts Options) (*Plugin, error) {
	if opts.Store == nil {
		return nil, errors.New("memo: settings store is required")
	}
	if opts.FS == nil {
		return nil, errors.New("memo: file system is required")
	}
	p := &Plugin{
		store:     opts.Store,
		fs:        opts.FS,
		renderer:  opts.Renderer,
		encoder:   opts.Encoder,
		workspace: opts.Workspace,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		names:     &nameSource{now: opts.Clock},
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.renderer == nil {
		p.renderer = card.NewRenderer(raster.New(raster.Options{Logger: p.logger}), nil, p.logger)
	}
	if p.encoder == nil {
		p.encoder = generator.PNGEncoder{}
	}
	if p.workspace == nil {
		p.workspace = workspace.None
	}
	if p.notifier == nil {
		p.notifier = notice.Discard
	}
	if p.names.now == nil {
		p.names.now = time.Now
	}
	return p, nil
}

// Initialize loads the settings. It is the plugin activation hook.
func (p *Plugin) Initialize(ctx context.Context) error {
	if err := p.store.Load(ctx); err != nil {
		return err
	}
	p.logger.Info("memo plugin initialized", "command", CommandID)
	return nil
}

// Shutdown persists the settings. It is the plugin deactivation hook.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.store.State() != settings.StateLoaded {
		return nil
	}
	if err := p.store.Save(ctx); err != nil {
		return err
	}
	p.logger.Info("memo plugin shut down")
	return nil
}

// Settings returns the plugin's settings store.
func (p *Plugin) Settings() *settings.Store { return p.store }

// Renderer returns the card renderer.
func (p *Plugin) Renderer() *card.Renderer { return p.renderer }

// Notifier returns the plugin's own notifier.
func (p *Plugin) Notifier() notice.Notifier { return p.notifier }

// Encoder returns the image encoder.
func (p *Plugin) Encoder() generator.Encoder { return p.encoder }

// Commands returns the commands the plugin registers with its host.
func (p *Plugin) Commands() []Command {
	return []Command{{
		ID:   CommandID,
		Name: CommandName,
		Run: func(ctx context.Context) error {
			_, err := p.GenerateMemo(ctx)
			return err
		},
	}}
}

// GenerateMemo runs the command against the plugin's own workspace and
// notifier.
func (p *Plugin) GenerateMemo(ctx context.Context) (Result, error) {
	return p.Generate(ctx, p.workspace, p.notifier)
}

// Generate renders the selection of the active editor in ws and saves it.
// Every outcome, success or failure, is reported through exactly one notice.
func (p *Plugin) Generate(ctx context.Context, ws workspace.Workspace, n notice.Notifier) (Result, error) {
	if ws == nil {
		ws = workspace.None
	}
	if n == nil {
		n = notice.Discard
	}

	editor, ok := ws.ActiveEditor()
	if !ok {
		n.Notify(msgNoActiveEditor)
		return Result{}, ErrNoActiveEditor
	}
	text := editor.Selection()
	if text == "" {
		n.Notify(msgNoSelection)
		return Result{}, ErrNoSelection
	}

	img, err := p.renderer.Render(ctx, text, style.Resolve(p.store.Config()))
	if err != nil {
		n.Notify(fmt.Sprintf(msgRenderFailed, err))
		p.logger.Error("rendering memo failed", "err", err)
		return Result{}, err
	}
	data, err := p.encoder.Encode(img)
	if err != nil {
		n.Notify(fmt.Sprintf(msgEncodeFailed, err))
		p.logger.Error("encoding memo failed", "err", err)
		return Result{}, err
	}

	target := p.names.next(p.encoder.Ext())
	written, err := vault.Persist(ctx, p.fs, target, data)
	if err != nil {
		n.Notify(fmt.Sprintf(msgSaveFailed, err))
		p.logger.Error("saving memo failed", "path", target, "err", err)
		return Result{}, err
	}

	n.Notify(fmt.Sprintf(msgSaved, written))
	b := img.Bounds()
	p.logger.Info("memo saved", "path", written, "bytes", len(data), "width", b.Dx(), "height", b.Dy())
	return Result{Path: written, Bytes: len(data), Width: b.Dx(), Height: b.Dy()}, nil
}

// Render resolves the style for cfg, rasterizes text and encodes the bitmap
// without persisting anything.
func (p *Plugin) Render(ctx context.Context, text string, cfg settings.Config) (image.Image, []byte, error) {
	img, err := p.renderer.Render(ctx, text, style.Resolve(cfg))
	if err != nil {
		return nil, nil, err
	}
	data, err := p.encoder.Encode(img)
	if err != nil {
		return nil, nil, err
	}
	return img, data, nil
}

// nameSource hands out memo file names. Timestamps are Unix milliseconds,
// bumped past the previous one so names never repeat within a process.
type nameSource struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func (s *nameSource) next(ext string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.now().UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return fmt.Sprintf("%s/memo-%d%s", OutputDir, ms, ext)
}
