package web

import (
	"net/http"
	"strconv"

	"scanstock/internal/label"
)

// handleLabel renders a printable barcode for code. EAN-13 is preferred;
// the symbology that actually carried the code is reported in a header.
func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	s.serveLabel(w, r, r.PathValue("code"))
}

// handleRandomLabel renders a label for an arbitrary catalog product,
// useful for test scans on the warehouse floor.
func (s *Server) handleRandomLabel(w http.ResponseWriter, r *http.Request) {
	product, err := s.products.Random(r.Context())
	if err != nil {
		s.logger.Error("failed to pick random product", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to pick product")
		return
	}
	if product == nil {
		s.writeError(w, http.StatusNotFound, "no products in catalog")
		return
	}
	w.Header().Set("X-Product-Name", product.Name)
	s.serveLabel(w, r, product.Code)
}

func (s *Server) handleInStockLabel(w http.ResponseWriter, r *http.Request) {
	product, quantity, err := s.products.RandomInStock(r.Context())
	if err != nil {
		s.logger.Error("failed to pick in-stock product", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to pick product")
		return
	}
	if product == nil {
		s.writeError(w, http.StatusNotFound, "no in-stock products")
		return
	}
	w.Header().Set("X-Product-Name", product.Name)
	w.Header().Set("X-Current-Quantity", strconv.Itoa(quantity))
	s.serveLabel(w, r, product.Code)
}

func (s *Server) serveLabel(w http.ResponseWriter, r *http.Request, code string) {
	opts := label.Options{
		Width:  queryInt(r, "width"),
		Height: queryInt(r, "height"),
	}

	data, symbology, err := label.RenderPNG(code, opts)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "code cannot be rendered as a barcode")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Symbology", string(symbology))
	w.Header().Set("X-Product-Code", code)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write label", "error", err)
	}
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
