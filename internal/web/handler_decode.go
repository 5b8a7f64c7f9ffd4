package web

import (
	"bytes"
	"errors"
	"image"
	"io"
	"net/http"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"scanstock/internal/decode"
)

const maxImageSize = 10 * 1024 * 1024 // 10 MB

// allowedImageTypes is the set of MIME types accepted for uploaded images.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing, which matches the formats the stdlib can decode for us.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// handleDecodeImage is the manual-upload fallback: decode a single still
// image once. Finding no barcode is a user-facing outcome, not a fault, and
// nothing is retried.
func (s *Server) handleDecodeImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.Error("failed to close upload", "error", err)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}
	if !allowedImageTypes[http.DetectContentType(data)] {
		s.writeError(w, http.StatusUnsupportedMediaType, "unsupported image type")
		return
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to decode image")
		return
	}

	res, err := s.decoder.Decode(img)
	if err != nil {
		if errors.Is(err, decode.ErrNoBarcode) {
			s.writeError(w, http.StatusUnprocessableEntity, "no barcode detected in image")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "image decoding failed")
		return
	}

	s.logger.Info("still image decoded", "code", res.Code, "format", res.Format)
	s.respondScan(w, r, res.Code)
}
