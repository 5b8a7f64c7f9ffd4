// Package label renders printable barcode images for catalog codes.
// Rendering is pure: no state, no I/O.
package label

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"
)

// Symbology names the encoding that ended up on the label.
type Symbology string

const (
	SymbologyEAN13   Symbology = "EAN-13"
	SymbologyCode128 Symbology = "CODE128"
)

type Options struct {
	Width  int
	Height int
}

const (
	defaultWidth  = 360
	defaultHeight = 120
)

// Render encodes code as a barcode image. EAN-13 is attempted first; codes
// that fail its length or checksum constraints fall back to CODE128. The
// fallback is policy, not an error: only a code that neither symbology can
// carry fails.
func Render(code string, opts Options) (image.Image, Symbology, error) {
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	sym := SymbologyEAN13
	var bc barcode.Barcode
	var eanErr error
	if l := len(code); l == 12 || l == 13 {
		bc, eanErr = ean.Encode(code)
	} else {
		eanErr = fmt.Errorf("length %d not valid for EAN-13", len(code))
	}
	if eanErr != nil {
		sym = SymbologyCode128
		c128, err := code128.Encode(code)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode %q as EAN-13 (%v) or CODE128: %w", code, eanErr, err)
		}
		bc = c128
	}

	scaled, err := barcode.Scale(bc, width, height)
	if err != nil {
		return nil, "", fmt.Errorf("failed to scale barcode: %w", err)
	}

	return scaled, sym, nil
}

// RenderPNG is Render encoded as PNG bytes, for serving over HTTP.
func RenderPNG(code string, opts Options) ([]byte, Symbology, error) {
	img, sym, err := Render(code, opts)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("failed to encode label png: %w", err)
	}

	return buf.Bytes(), sym, nil
}
