// Package card prepares a styled memo card element, hands it to a rasterizer
// and cleans it up again.
package card

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	nanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/xob0t/memocard/pkg/style"
)

var (
	ErrEmptyText = errors.New("no text to render")
	ErrRasterize = errors.New("rasterize failed")
)

// Element is the off-screen card: a style descriptor plus its literal text
// content. Text is never interpreted as markup.
type Element struct {
	ID    string
	Style style.Descriptor
	Text  string
}

// Rasterizer turns a mounted element into a bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, el *Element) (image.Image, error)
}

// RasterizerFunc adapts a function to Rasterizer.
type RasterizerFunc func(ctx context.Context, el *Element) (image.Image, error)

func (f RasterizerFunc) Rasterize(ctx context.Context, el *Element) (image.Image, error) {
	return f(ctx, el)
}

// RasterizeError carries the failing element ID.
type RasterizeError struct {
	ElementID string
	Err       error
}

func (e *RasterizeError) Error() string {
	return fmt.Sprintf("rasterize %s: %v", e.ElementID, e.Err)
}

func (e *RasterizeError) Unwrap() []error { return []error{ErrRasterize, e.Err} }

// Tree is the visible render tree elements must be attached to while they
// are rasterized. Each invocation mounts its own element.
type Tree struct {
	mu       sync.Mutex
	elements map[string]*Element
}

// NewTree returns an empty render tree.
func NewTree() *Tree {
	return &Tree{elements: make(map[string]*Element)}
}

// Mount attaches el.
func (t *Tree) Mount(el *Element) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.elements[el.ID]; ok {
		return fmt.Errorf("element %s already mounted", el.ID)
	}
	t.elements[el.ID] = el
	return nil
}

// Unmount detaches the element with the given ID. Unknown IDs are ignored.
func (t *Tree) Unmount(id string) {
	t.mu.Lock()
	delete(t.elements, id)
	t.mu.Unlock()
}

// Mounted reports whether id is attached.
func (t *Tree) Mounted(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.elements[id]
	return ok
}

// Len is the number of attached elements.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.elements)
}

// Renderer builds card elements and rasterizes them.
type Renderer struct {
	tree   *Tree
	raster Rasterizer
	logger *slog.Logger
}

// NewRenderer creates a renderer. A nil tree gets a private one.
func NewRenderer(r Rasterizer, tree *Tree, logger *slog.Logger) *Renderer {
	if tree == nil {
		tree = NewTree()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{tree: tree, raster: r, logger: logger}
}

// Tree returns the render tree elements are mounted into.
func (r *Renderer) Tree() *Tree { return r.tree }

// Render mounts a card for text styled by desc, rasterizes it and unmounts
// it on every exit path.
func (r *Renderer) Render(ctx context.Context, text string, desc style.Descriptor) (img image.Image, err error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	id, err := nanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", 12)
	if err != nil {
		return nil, fmt.Errorf("element id: %w", err)
	}
	el := &Element{
		ID:    "memo-card-" + id,
		Style: desc.Clone(),
		Text:  norm.NFC.String(text),
	}

	if err := r.tree.Mount(el); err != nil {
		return nil, err
	}
	defer r.tree.Unmount(el.ID)

	r.logger.Debug("card mounted", "element", el.ID, "style", el.Style.CSS())

	img, err = r.raster.Rasterize(ctx, el)
	if err != nil {
		return nil, &RasterizeError{ElementID: el.ID, Err: err}
	}
	if img == nil {
		return nil, &RasterizeError{ElementID: el.ID, Err: errors.New("rasterizer returned no image")}
	}
	return img, nil
}
