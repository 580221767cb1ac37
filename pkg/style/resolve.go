// Package style maps the Configuration Record to a card style descriptor and
// parses the CSS-like values that descriptor carries.
//
// Resolve is a pure pass-through: it never validates. The parsers in this
// package are used later by the rasterizer, where malformed values degrade.
package style

import (
	"sort"
	"strings"

	"github.com/xob0t/memocard/pkg/settings"
)

// Card style properties.
const (
	PropDisplay        = "display"
	PropJustifyContent = "justify-content"
	PropAlignItems     = "align-items"
	PropTextAlign      = "text-align"
	PropBackground     = "background"
	PropWidth          = "width"
	PropMinHeight      = "min-height"
	PropColor          = "color"
	PropFontSize       = "font-size"
	PropFontFamily     = "font-family"
)

// Descriptor maps visual property names to CSS-like string values.
type Descriptor map[string]string

// Resolve builds the descriptor for cfg. The background is the gradient when
// UseLinearGradient is set, the solid color otherwise. Layout properties are
// fixed: a flex box centering its content on both axes.
func Resolve(cfg settings.Config) Descriptor {
	background := cfg.BackgroundColor
	if cfg.UseLinearGradient {
		background = cfg.LinearGradient
	}

	return Descriptor{
		PropDisplay:        "flex",
		PropJustifyContent: "center",
		PropAlignItems:     "center",
		PropTextAlign:      "center",
		PropBackground:     background,
		PropWidth:          cfg.Width,
		PropMinHeight:      cfg.MinHeight,
		PropColor:          cfg.TextColor,
		PropFontSize:       cfg.FontSize,
		PropFontFamily:     cfg.FontFamily,
	}
}

// Clone returns an independent copy.
func (d Descriptor) Clone() Descriptor {
	out := make(Descriptor, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// CSS renders the descriptor as an inline style attribute, keys sorted.
func (d Descriptor) CSS() string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(d[k])
		b.WriteByte(';')
	}
	return b.String()
}
