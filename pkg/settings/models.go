// Package settings holds the memo card Configuration Record and the store that
// loads it from, and saves it to, a host-provided data slot.
package settings

// Config is the persisted set of visual options controlling card appearance.
// String fields are free-form and are never validated here; malformed values
// reach the rasterizer and degrade there.
type Config struct {
	Width             string `json:"width"`
	MinHeight         string `json:"minHeight"`
	BackgroundColor   string `json:"backgroundColor"`
	TextColor         string `json:"textColor"`
	FontSize          string `json:"fontSize"`
	FontFamily        string `json:"fontFamily"`
	UseLinearGradient bool   `json:"useLinearGradient"`
	LinearGradient    string `json:"linearGradient"`
}

// Defaults returns the hard-coded record used on first activation.
func Defaults() Config {
	return Config{
		Width:             "800px",
		MinHeight:         "400px",
		BackgroundColor:   "#ffffff",
		TextColor:         "#333333",
		FontSize:          "24px",
		FontFamily:        "Arial, sans-serif",
		UseLinearGradient: false,
		LinearGradient:    "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
	}
}

// FieldKind tells a settings form how to edit a field.
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindToggle FieldKind = "toggle"
)

// Field describes one control of the settings panel.
type Field struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	Description string    `json:"description"`
}

// fields is kept in panel order.
var fields = []Field{
	{"width", "Width", KindText, "Width of the memo card (e.g. 800px or 80%)"},
	{"minHeight", "Minimum Height", KindText, "Minimum height of the memo card (e.g. 400px)"},
	{"backgroundColor", "Background Color", KindText, "Solid background color (e.g. #ffffff)"},
	{"textColor", "Text Color", KindText, "Color of the memo text"},
	{"fontSize", "Font Size", KindText, "Font size of the memo text (e.g. 24px)"},
	{"fontFamily", "Font Family", KindText, "Font family list (e.g. Arial, sans-serif)"},
	{"useLinearGradient", "Use Linear Gradient", KindToggle, "Paint the background with the gradient below instead of the solid color"},
	{"linearGradient", "Linear Gradient", KindText, "CSS linear-gradient() used when the toggle is on"},
}

// Fields returns the settings panel fields in display order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Get returns the value of the field named key, formatted as the form shows it.
func (c Config) Get(key string) (string, bool) {
	switch key {
	case "width":
		return c.Width, true
	case "minHeight":
		return c.MinHeight, true
	case "backgroundColor":
		return c.BackgroundColor, true
	case "textColor":
		return c.TextColor, true
	case "fontSize":
		return c.FontSize, true
	case "fontFamily":
		return c.FontFamily, true
	case "useLinearGradient":
		if c.UseLinearGradient {
			return "true", true
		}
		return "false", true
	case "linearGradient":
		return c.LinearGradient, true
	}
	return "", false
}
