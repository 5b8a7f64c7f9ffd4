package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"scanstock/internal/domain"
	"scanstock/internal/inventory"
	"scanstock/internal/scan"
)

type productResponse struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Brand    string `json:"brand,omitempty"`
	Category string `json:"category,omitempty"`
}

type inventoryResponse struct {
	Code            string     `json:"code"`
	CurrentQuantity int        `json:"currentQuantity"`
	LastUpdated     *time.Time `json:"lastUpdated,omitempty"`
}

type noticeResponse struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type historyResponse struct {
	Code        string    `json:"code"`
	ProductName string    `json:"productName"`
	At          time.Time `json:"at"`
}

type sessionResponse struct {
	State     string             `json:"state"`
	Product   *productResponse   `json:"product,omitempty"`
	Inventory *inventoryResponse `json:"inventory,omitempty"`
	Quantity  int                `json:"quantity"`
	Notice    *noticeResponse    `json:"notice,omitempty"`
	History   []historyResponse  `json:"history,omitempty"`
}

func sessionFromView(view scan.View) sessionResponse {
	resp := sessionResponse{State: view.State, Quantity: view.Quantity}
	if view.Product != nil {
		resp.Product = &productResponse{
			Code:     view.Product.Code,
			Name:     view.Product.Name,
			Brand:    view.Product.Brand,
			Category: view.Product.Category,
		}
	}
	if view.Inventory != nil {
		resp.Inventory = &inventoryResponse{
			Code:            view.Inventory.Code,
			CurrentQuantity: view.Inventory.CurrentQuantity,
		}
		if !view.Inventory.LastUpdated.IsZero() {
			ts := view.Inventory.LastUpdated
			resp.Inventory.LastUpdated = &ts
		}
	}
	if view.Notice != nil {
		resp.Notice = &noticeResponse{Level: view.Notice.Level, Message: view.Notice.Message}
	}
	for _, entry := range view.History {
		resp.History = append(resp.History, historyResponse{
			Code:        entry.Code,
			ProductName: entry.ProductName,
			At:          entry.At,
		})
	}
	return resp
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		s.writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	s.respondScan(w, r, code)
}

// respondScan pushes a decoded code through the pipeline and maps the error
// taxonomy onto HTTP statuses. Suppressed duplicates are not faults; the
// caller just gets the unchanged session back.
func (s *Server) respondScan(w http.ResponseWriter, r *http.Request, code string) {
	err := s.controller.HandleScan(r.Context(), code)
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, scan.ErrDuplicateScan):
	case errors.Is(err, scan.ErrSessionBusy):
		status = http.StatusConflict
	case errors.Is(err, inventory.ErrProductNotFound):
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, sessionFromView(s.controller.Snapshot()))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, sessionFromView(s.controller.Snapshot()))
}

func (s *Server) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	// Invalid or missing input keeps the last valid value, mirroring how a
	// draft keystroke is reconciled on blur rather than propagated.
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Quantity != nil {
		s.controller.SetQuantity(*req.Quantity)
	}
	s.writeJSON(w, http.StatusOK, sessionFromView(s.controller.Snapshot()))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	kind := domain.TransactionType(r.PathValue("kind"))
	if !kind.Valid() {
		s.writeError(w, http.StatusBadRequest, "unknown action kind")
		return
	}

	res, err := s.controller.Act(r.Context(), kind)
	if err != nil {
		switch {
		case errors.Is(err, scan.ErrNoSession), errors.Is(err, scan.ErrActionInFlight):
			s.writeError(w, http.StatusConflict, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		NewQuantity int             `json:"newQuantity"`
		Clamped     bool            `json:"clamped"`
		Unlogged    bool            `json:"unlogged"`
		Session     sessionResponse `json:"session"`
	}{
		NewQuantity: res.NewQuantity,
		Clamped:     res.Clamped,
		Unlogged:    res.Unlogged,
		Session:     sessionFromView(s.controller.Snapshot()),
	})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	s.controller.Close()
	w.WriteHeader(http.StatusNoContent)
}
