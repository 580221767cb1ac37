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

var ErrInvalidGradient = errors.New("invalid gradient")

// Stop is one color stop. Pos is a fraction when Unit is "%", pixels when
// Unit is "px", and unset when Unit is empty.
type Stop struct {
	Color color.NRGBA
	Pos   float64
	Unit  string
}

// Gradient is a parsed linear-gradient(). Direction is either an angle in
// degrees (0 points up, 90 right) or, when Corner is set, a "to <corner>"
// keyword whose angle depends on the box aspect ratio.
type Gradient struct {
	Angle  float64
	Corner bool
	SX, SY int // corner direction: SX +1 right / -1 left, SY -1 top / +1 bottom
	Stops  []Stop
}

// IsGradient reports whether s looks like a linear-gradient() value.
func IsGradient(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "linear-gradient(")
}

// ParseLinearGradient parses a CSS linear-gradient() value.
func ParseLinearGradient(s string) (*Gradient, error) {
	v := strings.TrimSpace(s)
	if !IsGradient(v) || !strings.HasSuffix(v, ")") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGradient, s)
	}
	inner := v[len("linear-gradient(") : len(v)-1]
	args := splitTopLevel(inner, ',')
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no arguments", ErrInvalidGradient)
	}

	g := &Gradient{Angle: 180}
	first := strings.ToLower(strings.TrimSpace(args[0]))
	if strings.HasPrefix(first, "to ") {
		if err := g.parseSides(first); err != nil {
			return nil, err
		}
		args = args[1:]
	} else if a, ok := parseAngle(first); ok {
		g.Angle = a
		args = args[1:]
	}

	for _, arg := range args {
		stops, err := parseStop(arg)
		if err != nil {
			return nil, err
		}
		g.Stops = append(g.Stops, stops...)
	}
	if len(g.Stops) < 2 {
		return nil, fmt.Errorf("%w: need at least two color stops", ErrInvalidGradient)
	}
	return g, nil
}

func (g *Gradient) parseSides(v string) error {
	var sx, sy int
	for _, word := range strings.Fields(v)[1:] {
		switch word {
		case "left":
			sx = -1
		case "right":
			sx = 1
		case "top":
			sy = -1
		case "bottom":
			sy = 1
		default:
			return fmt.Errorf("%w: bad direction %q", ErrInvalidGradient, v)
		}
	}

	switch {
	case sx == 0 && sy == 0:
		return fmt.Errorf("%w: bad direction %q", ErrInvalidGradient, v)
	case sx != 0 && sy != 0:
		g.Corner, g.SX, g.SY = true, sx, sy
	case sy == -1:
		g.Angle = 0
	case sx == 1:
		g.Angle = 90
	case sy == 1:
		g.Angle = 180
	case sx == -1:
		g.Angle = 270
	}
	return nil
}

func parseAngle(v string) (float64, bool) {
	units := []struct {
		suffix string
		toDeg  float64
	}{
		{"grad", 0.9},
		{"turn", 360},
		{"deg", 1},
		{"rad", 180 / math.Pi},
	}
	for _, u := range units {
		if !strings.HasSuffix(v, u.suffix) {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, u.suffix), 64)
		if err != nil {
			return 0, false
		}
		return f * u.toDeg, true
	}
	return 0, false
}

// parseStop reads "color [pos [pos]]". Two positions produce two stops.
func parseStop(arg string) ([]Stop, error) {
	fields := splitTopLevel(strings.TrimSpace(arg), ' ')
	if len(fields) == 0 || len(fields) > 3 {
		return nil, fmt.Errorf("%w: bad color stop %q", ErrInvalidGradient, arg)
	}

	c, err := ParseColor(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGradient, err)
	}
	if len(fields) == 1 {
		return []Stop{{Color: c}}, nil
	}

	var stops []Stop
	for _, p := range fields[1:] {
		stop := Stop{Color: c}
		switch {
		case strings.HasSuffix(p, "%"):
			f, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad position %q", ErrInvalidGradient, p)
			}
			stop.Pos, stop.Unit = f/100, "%"
		case strings.HasSuffix(p, "px"):
			f, err := strconv.ParseFloat(strings.TrimSuffix(p, "px"), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad position %q", ErrInvalidGradient, p)
			}
			stop.Pos, stop.Unit = f, "px"
		case p == "0":
			stop.Unit = "%"
		default:
			return nil, fmt.Errorf("%w: bad position %q", ErrInvalidGradient, p)
		}
		stops = append(stops, stop)
	}
	return stops, nil
}

// splitTopLevel splits s on sep outside parentheses, dropping empty parts.
func splitTopLevel(s string, sep rune) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == sep && depth == 0:
			if p := strings.TrimSpace(s[start:i]); p != "" {
				parts = append(parts, p)
			}
			start = i + 1
		}
	}
	if p := strings.TrimSpace(s[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// Direction returns the unit vector of the gradient line for a w×h box, in
// image coordinates (y grows downward).
func (g *Gradient) Direction(w, h float64) (dx, dy float64) {
	if g.Corner {
		// Perpendicular to the diagonal joining the two other corners.
		dx, dy = float64(g.SX)*h, float64(g.SY)*w
		n := math.Hypot(dx, dy)
		if n == 0 {
			return 0, 1
		}
		return dx / n, dy / n
	}
	rad := g.Angle * math.Pi / 180
	return math.Sin(rad), -math.Cos(rad)
}

type resolvedStop struct {
	c   colorful.Color
	a   float64
	pos float64
}

// resolve fixes every stop position as a fraction of a gradient line of
// length px.
func (g *Gradient) resolve(length float64) []resolvedStop {
	n := len(g.Stops)
	pos := make([]float64, n)
	set := make([]bool, n)
	for i, s := range g.Stops {
		switch s.Unit {
		case "%":
			pos[i], set[i] = s.Pos, true
		case "px":
			if length > 0 {
				pos[i] = s.Pos / length
			}
			set[i] = true
		}
	}
	if !set[0] {
		pos[0], set[0] = 0, true
	}
	if !set[n-1] {
		pos[n-1], set[n-1] = 1, true
	}

	// A stop may not sit before an earlier one.
	for i := 1; i < n; i++ {
		if set[i] && pos[i] < pos[i-1] {
			pos[i] = pos[i-1]
		}
	}

	// Spread unset stops evenly between their positioned neighbours.
	for i := 1; i < n; {
		if set[i] {
			i++
			continue
		}
		j := i
		for !set[j] {
			j++
		}
		from, to := pos[i-1], pos[j]
		for k := i; k < j; k++ {
			pos[k] = from + (to-from)*float64(k-i+1)/float64(j-i+1)
			set[k] = true
		}
		i = j
	}

	out := make([]resolvedStop, n)
	for i, s := range g.Stops {
		out[i] = resolvedStop{
			c:   colorful.Color{R: float64(s.Color.R) / 255, G: float64(s.Color.G) / 255, B: float64(s.Color.B) / 255},
			a:   float64(s.Color.A) / 255,
			pos: pos[i],
		}
	}
	return out
}

// Shader returns a function giving the gradient color at pixel (x, y) of a
// w×h box.
func (g *Gradient) Shader(w, h float64) func(x, y float64) color.NRGBA {
	dx, dy := g.Direction(w, h)
	length := math.Abs(w*dx) + math.Abs(h*dy)
	stops := g.resolve(length)
	cx, cy := w/2, h/2

	return func(x, y float64) color.NRGBA {
		t := 0.5
		if length > 0 {
			t = ((x-cx)*dx+(y-cy)*dy)/length + 0.5
		}
		return colorAt(stops, t)
	}
}

func colorAt(stops []resolvedStop, t float64) color.NRGBA {
	if t <= stops[0].pos {
		return toNRGBA(stops[0].c, stops[0].a)
	}
	last := stops[len(stops)-1]
	if t >= last.pos {
		return toNRGBA(last.c, last.a)
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t > b.pos {
			continue
		}
		span := b.pos - a.pos
		if span <= 0 {
			return toNRGBA(b.c, b.a)
		}
		f := (t - a.pos) / span
		return toNRGBA(a.c.BlendRgb(b.c, f), a.a+(b.a-a.a)*f)
	}
	return toNRGBA(last.c, last.a)
}

func toNRGBA(c colorful.Color, a float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp(a, 0, 1) * 255))}
}
