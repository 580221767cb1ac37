package style

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrInvalidColor = errors.New("invalid color")

var namedColors = map[string]color.NRGBA{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"lime":        {0, 255, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"cyan":        {0, 255, 255, 255},
	"aqua":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"fuchsia":     {255, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"silver":      {192, 192, 192, 255},
	"maroon":      {128, 0, 0, 255},
	"olive":       {128, 128, 0, 255},
	"navy":        {0, 0, 128, 255},
	"purple":      {128, 0, 128, 255},
	"teal":        {0, 128, 128, 255},
	"orange":      {255, 165, 0, 255},
	"pink":        {255, 192, 203, 255},
	"gold":        {255, 215, 0, 255},
	"coral":       {255, 127, 80, 255},
	"salmon":      {250, 128, 114, 255},
	"tomato":      {255, 99, 71, 255},
	"indigo":      {75, 0, 130, 255},
	"violet":      {238, 130, 238, 255},
	"brown":       {165, 42, 42, 255},
	"beige":       {245, 245, 220, 255},
	"ivory":       {255, 255, 240, 255},
	"khaki":       {240, 230, 140, 255},
	"lavender":    {230, 230, 250, 255},
	"skyblue":     {135, 206, 235, 255},
	"steelblue":   {70, 130, 180, 255},
	"slategray":   {112, 128, 144, 255},
	"lightgray":   {211, 211, 211, 255},
	"lightgrey":   {211, 211, 211, 255},
	"darkgray":    {169, 169, 169, 255},
	"darkgrey":    {169, 169, 169, 255},
	"whitesmoke":  {245, 245, 245, 255},
	"transparent": {0, 0, 0, 0},
}

// ParseColor parses a CSS color: #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(),
// rgba(), hsl(), hsla() or a named color.
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return color.NRGBA{}, fmt.Errorf("%w: empty", ErrInvalidColor)
	}

	if c, ok := namedColors[v]; ok {
		return c, nil
	}

	switch {
	case strings.HasPrefix(v, "#"):
		return parseHex(v)
	case strings.HasPrefix(v, "rgb"):
		return parseRGBFunc(v)
	case strings.HasPrefix(v, "hsl"):
		return parseHSLFunc(v)
	}
	return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

func parseHex(v string) (color.NRGBA, error) {
	hex := v
	alpha := uint8(255)

	switch len(v) {
	case 5: // #rgba
		a, err := strconv.ParseUint(strings.Repeat(v[4:5], 2), 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, v)
		}
		hex, alpha = v[:4], uint8(a)
	case 9: // #rrggbbaa
		a, err := strconv.ParseUint(v[7:9], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, v)
		}
		hex, alpha = v[:7], uint8(a)
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, v)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// funcArgs splits "name(a, b, c)" or "name(a b c / d)" into its arguments.
func funcArgs(v string) ([]string, error) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, v)
	}
	inner := v[open+1 : len(v)-1]
	inner = strings.NewReplacer(",", " ", "/", " ").Replace(inner)
	return strings.Fields(inner), nil
}

func parseRGBFunc(v string) (color.NRGBA, error) {
	args, err := funcArgs(v)
	if err != nil {
		return color.NRGBA{}, err
	}
	if len(args) != 3 && len(args) != 4 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, v)
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		f, err := parseChannel(args[i], 255)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, v)
		}
		ch[i] = uint8(math.Round(clamp(f, 0, 255)))
	}

	a := 1.0
	if len(args) == 4 {
		if a, err = parseChannel(args[3], 1); err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, v)
		}
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: uint8(math.Round(clamp(a, 0, 1) * 255))}, nil
}

func parseHSLFunc(v string) (color.NRGBA, error) {
	args, err := funcArgs(v)
	if err != nil {
		return color.NRGBA{}, err
	}
	if len(args) != 3 && len(args) != 4 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, v)
	}

	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, v)
	}
	s, err1 := parseChannel(args[1], 1)
	l, err2 := parseChannel(args[2], 1)
	if err1 != nil || err2 != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, v)
	}

	a := 1.0
	if len(args) == 4 {
		if a, err = parseChannel(args[3], 1); err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, v)
		}
	}

	h = math.Mod(math.Mod(h, 360)+360, 360)
	r, g, b := colorful.Hsl(h, clamp(s, 0, 1), clamp(l, 0, 1)).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp(a, 0, 1) * 255))}, nil
}

// parseChannel reads a number or a percentage of full.
func parseChannel(s string, full float64) (float64, error) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, err
		}
		return f / 100 * full, nil
	}
	return strconv.ParseFloat(s, 64)
}

func clamp(f, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, f))
}
