package decode

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoBarcode means no strategy found a readable code in the image.
// For still images this is user-facing ("no barcode detected"); for video
// frames it is the expected steady state and stays silent.
var ErrNoBarcode = errors.New("no barcode detected")

// Result is a decoded payload tagged with the symbology strategy that
// produced it.
type Result struct {
	Code   string
	Format string
}

// strategy pairs a reader with the name reported in Result.Format.
type strategy struct {
	name   string
	reader gozxing.Reader
}

// ImageDecoder attempts an ordered list of symbology strategies against one
// image until one succeeds. Downstream stages treat the output as an opaque
// string; no format validation happens here beyond what each reader itself
// guarantees.
type ImageDecoder struct {
	strategies []strategy
	hints      map[gozxing.DecodeHintType]interface{}
}

// NewImageDecoder builds a decoder over the retail-linear formats, most
// likely first, with QR and ITF at the tail for odd labels.
func NewImageDecoder() *ImageDecoder {
	return &ImageDecoder{
		strategies: []strategy{
			{"EAN-13", oned.NewEAN13Reader()},
			{"EAN-8", oned.NewEAN8Reader()},
			{"UPC-A", oned.NewUPCAReader()},
			{"UPC-E", oned.NewUPCEReader()},
			{"CODE128", oned.NewCode128Reader()},
			{"CODE39", oned.NewCode39Reader()},
			{"ITF", oned.NewITFReader()},
			{"QR", qrcode.NewQRCodeReader()},
		},
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode tries each strategy in order and returns the first hit, or
// ErrNoBarcode when every strategy fails.
func (d *ImageDecoder) Decode(img image.Image) (Result, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return Result{}, fmt.Errorf("failed to binarize image: %w", err)
	}

	for _, s := range d.strategies {
		res, err := s.reader.Decode(bmp, d.hints)
		if err != nil {
			continue
		}
		return Result{Code: res.GetText(), Format: s.name}, nil
	}

	return Result{}, ErrNoBarcode
}
