// Package raster is the default card rasterizer. It lays a card element out
// as a centered flex box and paints it with golang.org/x/image fonts.
//
// Layout: width from the width property (percentages of the viewport), height
// the larger of min-height and the text block. Text breaks only at explicit
// newlines. Unparsable values degrade the way a browser ignores an invalid
// declaration.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/xob0t/memocard/pkg/card"
	"github.com/xob0t/memocard/pkg/style"
)

const (
	// DefaultViewportWidth is the containing width percentages resolve against.
	DefaultViewportWidth = 1000.0
	// DefaultFontSize applies when font-size is missing or invalid.
	DefaultFontSize = 16.0

	// MaxDimension bounds each side of a card, in device pixels.
	MaxDimension = 16384
	// MaxPixels bounds the area of a card.
	MaxPixels = 1 << 26
)

// ErrTooLarge reports a card whose box exceeds MaxDimension or MaxPixels.
var ErrTooLarge = errors.New("card too large")

// Options configures a Rasterizer.
type Options struct {
	ViewportWidth float64
	Scale         float64 // device pixel ratio; lengths are multiplied by it
	Fonts         *FontManager
	Logger        *slog.Logger
}

// Rasterizer implements card.Rasterizer.
type Rasterizer struct {
	viewport float64
	scale    float64
	fonts    *FontManager
	logger   *slog.Logger
}

var _ card.Rasterizer = (*Rasterizer)(nil)

// New creates a rasterizer, filling zero options with defaults.
func New(opts Options) *Rasterizer {
	r := &Rasterizer{
		viewport: opts.ViewportWidth,
		scale:    opts.Scale,
		fonts:    opts.Fonts,
		logger:   opts.Logger,
	}
	if !(r.viewport > 0) || math.IsInf(r.viewport, 0) {
		r.viewport = DefaultViewportWidth
	}
	if !(r.scale > 0) || math.IsInf(r.scale, 0) {
		r.scale = 1
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.fonts == nil {
		r.fonts = NewFontManager(nil, r.logger)
	}
	return r
}

// layout is the computed box of a card, in device pixels.
type layout struct {
	width, height int
	fontSize      float64
	lines         []string
}

func (r *Rasterizer) layout(el *card.Element) (layout, error) {
	st := el.Style

	fontSize, err := style.ParseLength(st[style.PropFontSize], DefaultFontSize, DefaultFontSize)
	if err != nil || fontSize <= 0 {
		r.warn(el, style.PropFontSize, err)
		fontSize = DefaultFontSize
	}

	width := r.viewport
	if v := strings.TrimSpace(st[style.PropWidth]); v != "" && v != "auto" {
		if w, err := style.ParseLength(v, r.viewport, fontSize); err == nil {
			width = w
		} else {
			r.warn(el, style.PropWidth, err)
		}
	}

	var minHeight float64
	if v := strings.TrimSpace(st[style.PropMinHeight]); v != "" && v != "auto" {
		// Percentages of an auto-height parent compute to zero.
		if h, err := style.ParseLength(v, 0, fontSize); err == nil {
			minHeight = h
		} else {
			r.warn(el, style.PropMinHeight, err)
		}
	}

	// Checked in floating point so the int conversions below stay in range.
	w, h, fs := width*r.scale, minHeight*r.scale, fontSize*r.scale
	switch {
	case w > MaxDimension:
		return layout{}, fmt.Errorf("%w: width %.0fpx exceeds %dpx", ErrTooLarge, w, MaxDimension)
	case h > MaxDimension:
		return layout{}, fmt.Errorf("%w: min-height %.0fpx exceeds %dpx", ErrTooLarge, h, MaxDimension)
	case fs > MaxDimension:
		return layout{}, fmt.Errorf("%w: font-size %.0fpx exceeds %dpx", ErrTooLarge, fs, MaxDimension)
	}

	text := strings.ReplaceAll(el.Text, "\r\n", "\n")
	return layout{
		width:    max(int(math.Round(w)), 1),
		height:   max(int(math.Ceil(h)), 1),
		fontSize: fs,
		lines:    strings.Split(text, "\n"),
	}, nil
}

func (r *Rasterizer) warn(el *card.Element, prop string, err error) {
	r.logger.Warn("ignoring invalid style value", "element", el.ID, "property", prop, "value", el.Style[prop], "err", err)
}

// Rasterize paints el into a new NRGBA bitmap.
func (r *Rasterizer) Rasterize(ctx context.Context, el *card.Element) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lay, err := r.layout(el)
	if err != nil {
		return nil, err
	}

	face, family, err := r.fonts.Face(style.ParseFontFamilies(el.Style[style.PropFontFamily]), lay.fontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	lineHeight := m.Height.Ceil()
	if lineHeight < ascent+descent {
		lineHeight = ascent + descent
	}
	blockHeight := lineHeight * len(lay.lines)
	if blockHeight > MaxDimension {
		return nil, fmt.Errorf("%w: %d lines need %dpx, limit %dpx", ErrTooLarge, len(lay.lines), blockHeight, MaxDimension)
	}
	lay.height = max(lay.height, blockHeight)
	if lay.width*lay.height > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, lay.width, lay.height, MaxPixels)
	}

	img := imaging.New(lay.width, lay.height, color.NRGBA{})
	if err := r.paintBackground(ctx, img, el); err != nil {
		return nil, err
	}

	textColor, err := style.ParseColor(el.Style[style.PropColor])
	if err != nil {
		r.warn(el, style.PropColor, err)
		textColor = color.NRGBA{A: 255}
	}

	advances := make([]int, len(lay.lines))
	blockWidth := 0
	for i, line := range lay.lines {
		advances[i] = font.MeasureString(face, line).Ceil()
		blockWidth = max(blockWidth, advances[i])
	}

	// The text block is the single flex item, centered on both axes.
	blockX := (lay.width - blockWidth) / 2
	top := (lay.height - blockHeight) / 2
	halfLeading := (lineHeight - ascent - descent) / 2
	align := strings.TrimSpace(el.Style[style.PropTextAlign])

	for i, line := range lay.lines {
		x := blockX
		switch align {
		case "right", "end":
			x += blockWidth - advances[i]
		case "left", "start":
		default:
			x += (blockWidth - advances[i]) / 2
		}
		y := top + i*lineHeight + halfLeading + ascent
		drawString(img, line, x, y, textColor, face)
	}

	r.logger.Debug("card rasterized", "element", el.ID, "width", lay.width, "height", lay.height, "font", family, "lines", len(lay.lines))
	return img, nil
}

func (r *Rasterizer) paintBackground(ctx context.Context, img *image.NRGBA, el *card.Element) error {
	bg := strings.TrimSpace(el.Style[style.PropBackground])
	if bg == "" {
		return nil
	}

	if style.IsGradient(bg) {
		g, err := style.ParseLinearGradient(bg)
		if err != nil {
			r.warn(el, style.PropBackground, err)
			return nil
		}
		b := img.Bounds()
		shade := g.Shader(float64(b.Dx()), float64(b.Dy()))
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			for x := b.Min.X; x < b.Max.X; x++ {
				img.SetNRGBA(x, y, shade(float64(x)+0.5, float64(y)+0.5))
			}
		}
		return nil
	}

	c, err := style.ParseColor(bg)
	if err != nil {
		r.warn(el, style.PropBackground, err)
		return nil
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return nil
}

// drawString draws text with its baseline origin at (x, y).
func drawString(img draw.Image, text string, x, y int, col color.Color, face font.Face) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

// String describes the rasterizer configuration.
func (r *Rasterizer) String() string {
	return fmt.Sprintf("raster(viewport=%gpx, scale=%g)", r.viewport, r.scale)
}
