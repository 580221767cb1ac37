package settings

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Merge overlays a persisted blob onto defaults. The merge is shallow and
// field-by-field: keys present in blob win, absent keys keep the default.
// A JSON null counts as absent. An empty blob yields defaults unchanged.
func Merge(defaults Config, blob []byte) (Config, error) {
	merged := defaults
	if len(blob) == 0 {
		return merged, nil
	}
	if !gjson.ValidBytes(blob) {
		return merged, fmt.Errorf("settings data is not valid JSON")
	}
	root := gjson.ParseBytes(blob)
	if root.Type == gjson.Null {
		return merged, nil
	}
	if !root.IsObject() {
		return merged, fmt.Errorf("settings data is not a JSON object")
	}

	mergeString(root, "width", &merged.Width)
	mergeString(root, "minHeight", &merged.MinHeight)
	mergeString(root, "backgroundColor", &merged.BackgroundColor)
	mergeString(root, "textColor", &merged.TextColor)
	mergeString(root, "fontSize", &merged.FontSize)
	mergeString(root, "fontFamily", &merged.FontFamily)
	mergeString(root, "linearGradient", &merged.LinearGradient)
	if v := root.Get("useLinearGradient"); v.Exists() && v.Type != gjson.Null {
		merged.UseLinearGradient = v.Bool()
	}

	return merged, nil
}

func mergeString(root gjson.Result, key string, dst *string) {
	v := root.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return
	}
	*dst = v.String()
}

// encode writes cfg over base, keeping every key of base that Config does
// not know about.
func encode(base []byte, cfg Config) ([]byte, error) {
	out := base
	if len(out) == 0 || !gjson.ParseBytes(out).IsObject() {
		out = []byte("{}")
	}

	values := []struct {
		key string
		val any
	}{
		{"width", cfg.Width},
		{"minHeight", cfg.MinHeight},
		{"backgroundColor", cfg.BackgroundColor},
		{"textColor", cfg.TextColor},
		{"fontSize", cfg.FontSize},
		{"fontFamily", cfg.FontFamily},
		{"useLinearGradient", cfg.UseLinearGradient},
		{"linearGradient", cfg.LinearGradient},
	}

	var err error
	for _, v := range values {
		out, err = sjson.SetBytes(out, v.key, v.val)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", v.key, err)
		}
	}
	return pretty.Pretty(out), nil
}

// apply sets one field from its form representation.
func apply(cfg *Config, key, value string) error {
	switch key {
	case "width":
		cfg.Width = value
	case "minHeight":
		cfg.MinHeight = value
	case "backgroundColor":
		cfg.BackgroundColor = value
	case "textColor":
		cfg.TextColor = value
	case "fontSize":
		cfg.FontSize = value
	case "fontFamily":
		cfg.FontFamily = value
	case "linearGradient":
		cfg.LinearGradient = value
	case "useLinearGradient":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false, got %q", ErrInvalidValue, key, value)
		}
		cfg.UseLinearGradient = b
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return nil
}
