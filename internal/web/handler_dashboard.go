package web

import (
	"net/http"
	"strconv"
	"time"

	"scanstock/internal/domain"
)

const (
	defaultTransactionLimit = 20
	maxTransactionLimit     = 100
)

type transactionResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	ProductName string    `json:"productName"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	Timestamp   time.Time `json:"timestamp"`
	ActorID     string    `json:"actorId"`
}

func transactionsFromRecords(records []*domain.TransactionRecord) []transactionResponse {
	out := make([]transactionResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, transactionResponse{
			ID:          rec.ID,
			Code:        rec.Code,
			ProductName: rec.ProductName,
			Type:        string(rec.Type),
			Quantity:    rec.Quantity,
			Timestamp:   rec.Timestamp,
			ActorID:     rec.ActorID,
		})
	}
	return out
}

type topProductResponse struct {
	productResponse
	CurrentQuantity int `json:"currentQuantity"`
}

type dashboardResponse struct {
	TotalProducts      int64                 `json:"totalProducts"`
	TotalUnits         int                   `json:"totalUnits"`
	ProductsWithStock  int                   `json:"productsWithStock"`
	LowStockCount      int                   `json:"lowStockCount"`
	RecentTransactions []transactionResponse `json:"recentTransactions"`
	TopProducts        []topProductResponse  `json:"topProducts"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := s.dashboard.Load(r.Context())
	if err != nil {
		s.logger.Error("failed to load dashboard", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	resp := dashboardResponse{
		TotalProducts:      data.TotalProducts,
		TotalUnits:         data.Stats.TotalUnits,
		ProductsWithStock:  data.Stats.ProductsWithStock,
		LowStockCount:      data.Stats.LowStockCount,
		RecentTransactions: transactionsFromRecords(data.RecentTransactions),
		TopProducts:        make([]topProductResponse, 0, len(data.TopProducts)),
	}
	for _, top := range data.TopProducts {
		resp.TopProducts = append(resp.TopProducts, topProductResponse{
			productResponse: productResponse{
				Code:     top.Product.Code,
				Name:     top.Product.Name,
				Brand:    top.Product.Brand,
				Category: top.Product.Category,
			},
			CurrentQuantity: top.CurrentQuantity,
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleInventory lists every stocked product with its quantity.
func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	list, err := s.dashboard.StockList(r.Context())
	if err != nil {
		s.logger.Error("failed to list inventory", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}

	out := make([]topProductResponse, 0, len(list))
	for _, item := range list {
		out = append(out, topProductResponse{
			productResponse: productResponse{
				Code:     item.Product.Code,
				Name:     item.Product.Name,
				Brand:    item.Product.Brand,
				Category: item.Product.Category,
			},
			CurrentQuantity: item.CurrentQuantity,
		})
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit := defaultTransactionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}

	var records []*domain.TransactionRecord
	var err error
	if raw := r.URL.Query().Get("type"); raw != "" {
		kind := domain.TransactionType(raw)
		if !kind.Valid() {
			s.writeError(w, http.StatusBadRequest, "unknown transaction type")
			return
		}
		records, err = s.transactions.ByType(r.Context(), kind, limit)
	} else {
		records, err = s.transactions.Recent(r.Context(), limit)
	}
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	s.writeJSON(w, http.StatusOK, transactionsFromRecords(records))
}
