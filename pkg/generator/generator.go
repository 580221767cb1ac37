// Package generator serializes rasterized memo cards.
//
// The pipeline mirrors a canvas: a bitmap is encoded to a standard PNG byte
// stream, and optionally wrapped as a data URL for transports that carry
// text.
package generator

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
)

// ErrNilImage is returned when there is no bitmap to encode.
var ErrNilImage = errors.New("generator: nil image")

// Encoder turns a bitmap into an image file payload.
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
	MIMEType() string
	Ext() string
}

// PNGEncoder encodes bitmaps as PNG.
type PNGEncoder struct {
	Compression png.CompressionLevel
}

var _ Encoder = PNGEncoder{}

// Encode returns the PNG byte stream for img.
func (e PNGEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.EncodeTo(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes the PNG byte stream for img to w.
func (e PNGEncoder) EncodeTo(w io.Writer, img image.Image) error {
	if img == nil {
		return ErrNilImage
	}
	enc := &png.Encoder{CompressionLevel: e.Compression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}
	return nil
}

// MIMEType implements Encoder.
func (PNGEncoder) MIMEType() string { return "image/png" }

// Ext implements Encoder.
func (PNGEncoder) Ext() string { return ".png" }

// EncodePNG encodes img with default compression.
func EncodePNG(img image.Image) ([]byte, error) {
	return PNGEncoder{}.Encode(img)
}
