package style

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidLength = errors.New("invalid length")

// RootFontSize is the rem base, the browser default.
const RootFontSize = 16.0

// ParseLength converts a CSS length to pixels. Percentages resolve against
// percentBase, em against emBase. A bare number is taken as pixels.
func ParseLength(s string, percentBase, emBase float64) (float64, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidLength)
	}

	units := []struct {
		suffix string
		scale  float64
	}{
		// Longer suffixes first: "rem" must not match as "em".
		{"rem", RootFontSize},
		{"px", 1},
		{"pt", 4.0 / 3.0},
		{"em", emBase},
		{"%", percentBase / 100},
	}

	for _, u := range units {
		if !strings.HasSuffix(v, u.suffix) {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, u.suffix)), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLength, s)
		}
		if f < 0 {
			return 0, fmt.Errorf("%w: negative %q", ErrInvalidLength, s)
		}
		px := f * u.scale
		if !finite(px) {
			return 0, fmt.Errorf("%w: not finite %q", ErrInvalidLength, s)
		}
		return px, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || !finite(f) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}
	return f, nil
}

// finite rejects NaN and the infinities strconv accepts ("NaN", "Inf").
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ParseFontFamilies splits a font-family list and strips quotes.
func ParseFontFamilies(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		name := strings.Trim(strings.TrimSpace(part), `"'`)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
