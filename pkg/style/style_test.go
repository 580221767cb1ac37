package style

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/xob0t/memocard/pkg/settings"
)

func TestResolveBackground(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  settings.Config
	}{
		{"Defaults", settings.Defaults()},
		{"Malformed", settings.Config{BackgroundColor: "??", LinearGradient: "nope("}},
		{"Empty", settings.Config{}},
	} {
		for _, useGradient := range []bool{true, false} {
			cfg := tc.cfg
			cfg.UseLinearGradient = useGradient
			d := Resolve(cfg)

			want := cfg.BackgroundColor
			if useGradient {
				want = cfg.LinearGradient
			}
			if d[PropBackground] != want {
				t.Errorf("%s gradient=%v: background = %q, want %q", tc.name, useGradient, d[PropBackground], want)
			}
		}
	}
}

func TestResolvePassThrough(t *testing.T) {
	cfg := settings.Config{
		Width: "80%", MinHeight: "3em", TextColor: "teal",
		FontSize: "19px", FontFamily: "'Go Mono', monospace",
	}
	d := Resolve(cfg)

	want := map[string]string{
		PropWidth:          "80%",
		PropMinHeight:      "3em",
		PropColor:          "teal",
		PropFontSize:       "19px",
		PropFontFamily:     "'Go Mono', monospace",
		PropDisplay:        "flex",
		PropJustifyContent: "center",
		PropAlignItems:     "center",
		PropTextAlign:      "center",
	}
	for k, v := range want {
		if d[k] != v {
			t.Errorf("%s = %q, want %q", k, d[k], v)
		}
	}
	if len(d) != len(want)+1 {
		t.Errorf("descriptor has %d properties, want %d", len(d), len(want)+1)
	}
}

func TestDescriptorCSS(t *testing.T) {
	d := Descriptor{"width": "1px", "color": "red"}
	if got := d.CSS(); got != "color: red; width: 1px;" {
		t.Errorf("CSS() = %q", got)
	}

	c := d.Clone()
	c["width"] = "2px"
	if d["width"] != "1px" {
		t.Error("Clone shares storage with the original")
	}
}

func TestParseColor(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want color.NRGBA
	}{
		{"#fff", color.NRGBA{255, 255, 255, 255}},
		{"#FF0000", color.NRGBA{255, 0, 0, 255}},
		{"#00ff0080", color.NRGBA{0, 255, 0, 128}},
		{"#0008", color.NRGBA{0, 0, 0, 136}},
		{"rgb(10, 20, 30)", color.NRGBA{10, 20, 30, 255}},
		{"rgba(10,20,30,0.5)", color.NRGBA{10, 20, 30, 128}},
		{"rgb(100% 0% 0% / 50%)", color.NRGBA{255, 0, 0, 128}},
		{"hsl(0, 100%, 50%)", color.NRGBA{255, 0, 0, 255}},
		{" Navy ", color.NRGBA{0, 0, 128, 255}},
		{"transparent", color.NRGBA{}},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseColor(tc.in)
			if err != nil {
				t.Fatalf("ParseColor(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"", "#12", "#ggg", "rgb(1,2)", "hsl(x, 1%, 1%)", "notacolor", "rgb(1,2,3"} {
		if _, err := ParseColor(in); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("ParseColor(%q) err = %v, want ErrInvalidColor", in, err)
		}
	}
}

func TestParseLength(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want float64
	}{
		{"800px", 800},
		{"50%", 500},
		{"2em", 40},
		{"2rem", 32},
		{"12pt", 16},
		{"42", 42},
		{" 10PX ", 10},
	} {
		got, err := ParseLength(tc.in, 1000, 20)
		if err != nil {
			t.Errorf("ParseLength(%q): %v", tc.in, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ParseLength(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, in := range []string{"", "auto", "px", "-4px", "ten px", "NaNpx", "NaN", "Infpx", "inf", "+Infinity", "-Inf%", "1e308rem"} {
		if _, err := ParseLength(in, 1000, 20); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("ParseLength(%q) err = %v, want ErrInvalidLength", in, err)
		}
	}
}

func TestParseFontFamilies(t *testing.T) {
	got := ParseFontFamilies(`"Helvetica Neue", 'Arial',  sans-serif ,`)
	want := []string{"Helvetica Neue", "Arial", "sans-serif"}
	if len(got) != len(want) {
		t.Fatalf("ParseFontFamilies = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("family %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseLinearGradient(t *testing.T) {
	g, err := ParseLinearGradient("linear-gradient(135deg, #667eea 0%, #764ba2 100%)")
	if err != nil {
		t.Fatal(err)
	}
	if g.Angle != 135 || len(g.Stops) != 2 {
		t.Fatalf("got angle %v with %d stops", g.Angle, len(g.Stops))
	}
	if g.Stops[1].Unit != "%" || g.Stops[1].Pos != 1 {
		t.Errorf("stop 1 = %+v", g.Stops[1])
	}

	g, err = ParseLinearGradient("linear-gradient(to top right, rgba(0, 0, 0, 0.5), red 20px 40px, blue)")
	if err != nil {
		t.Fatal(err)
	}
	if !g.Corner || g.SX != 1 || g.SY != -1 {
		t.Errorf("corner = %v %d %d", g.Corner, g.SX, g.SY)
	}
	if len(g.Stops) != 4 {
		t.Errorf("double-position stop not expanded: %d stops", len(g.Stops))
	}

	g, err = ParseLinearGradient("linear-gradient(red, blue)")
	if err != nil {
		t.Fatal(err)
	}
	if g.Angle != 180 {
		t.Errorf("default angle = %v, want 180", g.Angle)
	}

	g, err = ParseLinearGradient("linear-gradient(0.25turn, red, blue)")
	if err != nil {
		t.Fatal(err)
	}
	if g.Angle != 90 {
		t.Errorf("0.25turn = %v deg", g.Angle)
	}
}

func TestParseLinearGradientInvalid(t *testing.T) {
	for _, in := range []string{
		"#fff",
		"linear-gradient(red)",
		"linear-gradient(to nowhere, red, blue)",
		"linear-gradient(red, blue",
		"linear-gradient(red 1em, blue)",
		"linear-gradient(45deg, bogus, blue)",
	} {
		if _, err := ParseLinearGradient(in); !errors.Is(err, ErrInvalidGradient) {
			t.Errorf("ParseLinearGradient(%q) err = %v, want ErrInvalidGradient", in, err)
		}
	}
}

func TestGradientShader(t *testing.T) {
	g, err := ParseLinearGradient("linear-gradient(to right, #000000, #ffffff)")
	if err != nil {
		t.Fatal(err)
	}
	shade := g.Shader(100, 10)

	if c := shade(0, 5); c.R != 0 {
		t.Errorf("left edge = %v, want black", c)
	}
	if c := shade(100, 5); c.R != 255 {
		t.Errorf("right edge = %v, want white", c)
	}
	if c := shade(50, 5); c.R < 120 || c.R > 135 {
		t.Errorf("midpoint = %v, want mid gray", c)
	}
}

func TestGradientStopSpacing(t *testing.T) {
	g, err := ParseLinearGradient("linear-gradient(red, lime, blue 80%, black)")
	if err != nil {
		t.Fatal(err)
	}
	stops := g.resolve(100)
	want := []float64{0, 0.4, 0.8, 1}
	for i, s := range stops {
		if math.Abs(s.pos-want[i]) > 1e-9 {
			t.Errorf("stop %d at %v, want %v", i, s.pos, want[i])
		}
	}
}

func TestCornerDirectionSquare(t *testing.T) {
	g := &Gradient{Corner: true, SX: 1, SY: -1}
	dx, dy := g.Direction(10, 10)
	if math.Abs(dx-math.Sqrt2/2) > 1e-9 || math.Abs(dy+math.Sqrt2/2) > 1e-9 {
		t.Errorf("Direction = (%v, %v), want 45deg up-right", dx, dy)
	}
}
