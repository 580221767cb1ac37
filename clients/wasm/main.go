//go:build js && wasm

// memocard WASM: client-side memo rendering for browser hosts.
// Compiled with: GOOS=js GOARCH=wasm go build -o memocard.wasm ./clients/wasm/
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"syscall/js"

	"github.com/xob0t/memocard/pkg/card"
	"github.com/xob0t/memocard/pkg/generator"
	"github.com/xob0t/memocard/pkg/raster"
	"github.com/xob0t/memocard/pkg/settings"
	"github.com/xob0t/memocard/pkg/style"
)

var (
	logger   = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	fonts    = raster.NewFontManager(nil, logger)
	renderer = card.NewRenderer(raster.New(raster.Options{Fonts: fonts, Logger: logger}), nil, logger)
	encoder  = generator.PNGEncoder{}
)

func main() {
	fmt.Println("memocard WASM loaded")

	// Register JS-callable functions.
	js.Global().Set("goRenderMemo", js.FuncOf(renderMemo))
	js.Global().Set("goResolveStyle", js.FuncOf(resolveStyle))
	js.Global().Set("goSettingsFields", js.FuncOf(settingsFields))
	js.Global().Set("goRegisterFont", js.FuncOf(registerFont))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

// config merges a settings JSON blob over the defaults.
func config(args []js.Value, i int) (settings.Config, error) {
	var blob []byte
	if len(args) > i && args[i].Type() == js.TypeString {
		blob = []byte(args[i].String())
	}
	return settings.Merge(settings.Defaults(), blob)
}

// goRenderMemo(text, settingsJSON): render and return a PNG data URL.
func renderMemo(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need text")
	}
	cfg, err := config(args, 1)
	if err != nil {
		return js.ValueOf("error: settings: " + err.Error())
	}

	img, err := renderer.Render(context.Background(), args[0].String(), style.Resolve(cfg))
	if err != nil {
		return js.ValueOf("error: render: " + err.Error())
	}
	data, err := encoder.Encode(img)
	if err != nil {
		return js.ValueOf("error: encode: " + err.Error())
	}
	return js.ValueOf(generator.DataURL(encoder.MIMEType(), data))
}

// goResolveStyle(settingsJSON): return the card's inline CSS.
func resolveStyle(this js.Value, args []js.Value) interface{} {
	cfg, err := config(args, 0)
	if err != nil {
		return js.ValueOf("error: settings: " + err.Error())
	}
	return js.ValueOf(style.Resolve(cfg).CSS())
}

// goSettingsFields(): return the settings form fields as JSON.
func settingsFields(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(settings.Fields())
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	return js.ValueOf(string(data))
}

// goRegisterFont(family, base64Data): make a font usable in font-family.
func registerFont(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("error: need family, base64Data")
	}
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}
	if err := fonts.RegisterFont(args[0].String(), data); err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	return js.ValueOf("ok")
}
