// fonts.go - Font resolution for CSS font-family lists. Generic and common
// family names map onto the embedded Go fonts, custom TTF/OTF files can be
// registered per family, and anything unresolved falls back to Go Regular.
package raster

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"
)

// DefaultFamily is used when no family in a list resolves.
const DefaultFamily = "go regular"

var builtinFonts = map[string][]byte{
	"go regular":   goregular.TTF,
	"go mono":      gomono.TTF,
	"go bold":      gobold.TTF,
	"go italic":    goitalic.TTF,
	"go medium":    gomedium.TTF,
	"go smallcaps": gosmallcaps.TTF,
}

// aliases maps family names without an embedded face onto one that has.
var aliases = map[string]string{
	"go":              "go regular",
	"sans-serif":      "go regular",
	"serif":           "go regular",
	"system-ui":       "go regular",
	"arial":           "go regular",
	"helvetica":       "go regular",
	"helvetica neue":  "go regular",
	"segoe ui":        "go regular",
	"roboto":          "go regular",
	"inter":           "go regular",
	"times":           "go regular",
	"times new roman": "go regular",
	"georgia":         "go regular",
	"cursive":         "go italic",
	"fantasy":         "go bold",
	"monospace":       "go mono",
	"ui-monospace":    "go mono",
	"courier":         "go mono",
	"courier new":     "go mono",
	"consolas":        "go mono",
	"menlo":           "go mono",
	"monaco":          "go mono",
}

// FontManager resolves family lists to parsed fonts and caches them.
type FontManager struct {
	mu     sync.Mutex
	custom map[string][]byte
	parsed map[string]*opentype.Font
	logger *slog.Logger
}

// NewFontManager creates a font manager. custom maps family names to font
// files; files that cannot be read are skipped with a warning.
func NewFontManager(custom map[string]string, logger *slog.Logger) *FontManager {
	if logger == nil {
		logger = slog.Default()
	}
	fm := &FontManager{
		custom: make(map[string][]byte),
		parsed: make(map[string]*opentype.Font),
		logger: logger,
	}
	for family, path := range custom {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("could not load custom font, skipping", "family", family, "path", path, "err", err)
			continue
		}
		fm.custom[strings.ToLower(family)] = data
	}
	return fm
}

// RegisterFont makes TTF/OTF data available under family. It replaces any
// font previously registered under the same name.
func (fm *FontManager) RegisterFont(family string, data []byte) error {
	key := strings.ToLower(strings.TrimSpace(family))
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.custom[key] = data
	fm.parsed["custom:"+key] = f
	return nil
}

// Resolve returns the first family of the list that can be loaded, and the
// key it was resolved to.
func (fm *FontManager) Resolve(families []string) (*opentype.Font, string) {
	for _, family := range families {
		if f, key := fm.lookup(family); f != nil {
			return f, key
		}
	}
	f, _ := fm.load(DefaultFamily, builtinFonts[DefaultFamily])
	return f, DefaultFamily
}

func (fm *FontManager) lookup(family string) (*opentype.Font, string) {
	key := strings.ToLower(strings.TrimSpace(family))

	fm.mu.Lock()
	data, ok := fm.custom[key]
	fm.mu.Unlock()
	if ok {
		if f, err := fm.load("custom:"+key, data); err == nil {
			return f, key
		}
	}

	if ext := strings.ToLower(filepath.Ext(family)); ext == ".ttf" || ext == ".otf" {
		data, err := os.ReadFile(family)
		if err != nil {
			fm.logger.Warn("could not load font file, trying next family", "path", family, "err", err)
			return nil, ""
		}
		if f, err := fm.load("file:"+family, data); err == nil {
			return f, family
		}
		return nil, ""
	}

	if alias, ok := aliases[key]; ok {
		key = alias
	}
	if data, ok := builtinFonts[key]; ok {
		f, _ := fm.load(key, data)
		return f, key
	}
	return nil, ""
}

func (fm *FontManager) load(key string, data []byte) (*opentype.Font, error) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	if f, ok := fm.parsed[key]; ok {
		return f, nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		fm.logger.Warn("could not parse font", "font", key, "err", err)
		return nil, fmt.Errorf("parse font %s: %w", key, err)
	}
	fm.parsed[key] = f
	return f, nil
}

// Face returns a face of the resolved family at sizePx pixels.
func (fm *FontManager) Face(families []string, sizePx float64) (font.Face, string, error) {
	f, key := fm.Resolve(families)
	if f == nil {
		return nil, "", fmt.Errorf("no usable font")
	}

	// At 72 DPI one point is one pixel.
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create font face: %w", err)
	}
	return face, key, nil
}
