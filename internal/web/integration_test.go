package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanstock/internal/db"
	"scanstock/internal/decode"
	"scanstock/internal/domain"
	"scanstock/internal/inventory"
	"scanstock/internal/label"
	"scanstock/internal/scan"
	"scanstock/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, database.Close()) })

	products := store.NewProductStore(database)
	inventoryStore := store.NewInventoryStore(database)
	transactions := store.NewTransactionStore(database)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := inventory.NewResolver(products, inventoryStore)
	engine := inventory.NewEngine(inventoryStore, transactions, "test-worker", logger)
	dashboard := inventory.NewDashboard(products, inventoryStore, transactions, 5)
	controller := scan.NewController(scan.NewDebouncer(scan.DefaultCooldown), resolver, engine, logger)

	ctx := context.Background()
	require.NoError(t, products.Put(ctx, &domain.Product{
		Code: "5000112576009", Name: "Coca Cola", Brand: "Coca-Cola", Category: "Beverages",
	}))
	require.NoError(t, products.Put(ctx, &domain.Product{
		Code: "8076809514118", Name: "Nutella", Brand: "Ferrero", Category: "Food",
	}))

	return NewServer(controller, decode.NewImageDecoder(), dashboard, products, transactions, logger)
}

func doJSON(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestScanActionFlow(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/scan", `{"code":"5000112576009"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decodeSession(t, rec)
	assert.Equal(t, "product-open", session.State)
	require.NotNil(t, session.Product)
	assert.Equal(t, "Coca Cola", session.Product.Name)
	assert.Equal(t, 0, session.Inventory.CurrentQuantity)
	assert.Equal(t, 1, session.Quantity)

	// Receive the default single unit.
	rec = doJSON(t, server, http.MethodPost, "/session/actions/receive", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var action struct {
		NewQuantity int             `json:"newQuantity"`
		Clamped     bool            `json:"clamped"`
		Session     sessionResponse `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &action))
	assert.Equal(t, 1, action.NewQuantity)
	assert.Equal(t, "product-open", action.Session.State)
	require.NotNil(t, action.Session.Notice)
	assert.Equal(t, "success", action.Session.Notice.Level)

	// Bump the pending quantity and receive again.
	rec = doJSON(t, server, http.MethodPut, "/session/quantity", `{"quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decodeSession(t, rec).Quantity)

	rec = doJSON(t, server, http.MethodPost, "/session/actions/receive", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &action))
	assert.Equal(t, 6, action.NewQuantity)

	// Remove more than available: floored, flagged, requested amount logged.
	rec = doJSON(t, server, http.MethodPut, "/session/quantity", `{"quantity":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, server, http.MethodPost, "/session/actions/remove", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &action))
	assert.Equal(t, 0, action.NewQuantity)
	assert.True(t, action.Clamped)

	rec = doJSON(t, server, http.MethodDelete, "/session", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/session", "")
	assert.Equal(t, "idle", decodeSession(t, rec).State)

	rec = doJSON(t, server, http.MethodGet, "/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []transactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 3)
	// Most recent first: the clamped remove logs the requested 10.
	assert.Equal(t, "remove", txs[0].Type)
	assert.Equal(t, 10, txs[0].Quantity)
}

func TestScanUnknownCode(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/scan", `{"code":"0000000000000"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	session := decodeSession(t, rec)
	assert.Equal(t, "idle", session.State)
	require.NotNil(t, session.Notice)
	assert.Equal(t, "error", session.Notice.Level)

	// A valid code right after resolves normally.
	rec = doJSON(t, server, http.MethodPost, "/scan", `{"code":"5000112576009"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "product-open", decodeSession(t, rec).State)
}

func TestScanWhileSessionOpen(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/scan", `{"code":"5000112576009"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/scan", `{"code":"8076809514118"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestActionWithoutSession(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/session/actions/receive", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestActionUnknownKind(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/session/actions/restock", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecodeImageUpload(t *testing.T) {
	server := newTestServer(t)

	png, _, err := label.RenderPNG("5000112576009", label.Options{Width: 400, Height: 120})
	require.NoError(t, err)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", "label.png")
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/decode", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	session := decodeSession(t, rec)
	assert.Equal(t, "product-open", session.State)
	assert.Equal(t, "Coca Cola", session.Product.Name)
}

func TestDecodeImageUpload_NoBarcode(t *testing.T) {
	server := newTestServer(t)

	// A 1x1 white PNG has nothing to decode.
	png := []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53, 0xde, 0x00, 0x00, 0x00,
		0x10, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0xfa, 0xff, 0xff, 0x3f,
		0x20, 0x00, 0x00, 0xff, 0xff, 0x06, 0x06, 0x03, 0x00, 0xb7, 0x66, 0x11,
		0x21, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60,
		0x82,
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", "blank.png")
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/decode", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	// The failed upload must not disturb the idle session.
	rec2 := doJSON(t, server, http.MethodGet, "/session", "")
	assert.Equal(t, "idle", decodeSession(t, rec2).State)
}

func TestDashboard(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/scan", `{"code":"5000112576009"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, server, http.MethodPut, "/session/quantity", `{"quantity":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, server, http.MethodPost, "/session/actions/receive", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var dash dashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.EqualValues(t, 2, dash.TotalProducts)
	assert.Equal(t, 4, dash.TotalUnits)
	assert.Equal(t, 1, dash.ProductsWithStock)
	assert.Equal(t, 1, dash.LowStockCount)
	require.Len(t, dash.TopProducts, 1)
	assert.Equal(t, "Coca Cola", dash.TopProducts[0].Name)
	require.Len(t, dash.RecentTransactions, 1)

	rec = doJSON(t, server, http.MethodGet, "/inventory", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stocked []topProductResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stocked))
	require.Len(t, stocked, 1)
	assert.Equal(t, 4, stocked[0].CurrentQuantity)
}

func TestLabelEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/labels/5000112576009", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "EAN-13", rec.Header().Get("X-Symbology"))

	// Bad checksum falls back to CODE128 rather than failing.
	rec = doJSON(t, server, http.MethodGet, "/labels/5000112576001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CODE128", rec.Header().Get("X-Symbology"))
}

func TestRandomLabel_EmptyStock(t *testing.T) {
	server := newTestServer(t)

	// Catalog has products but nothing is stocked yet.
	rec := doJSON(t, server, http.MethodGet, "/labels/in-stock", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/labels/random", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Product-Name"))
}
