package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ventas-dashboard/internal/models"
	"ventas-dashboard/internal/services"
)

func createTestAnalytics() *services.Analytics {
	a := services.NewAnalytics()
	testData := []models.Sale{
		{
			Date:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Product: "Arroz Integral",
			Seller:  "Ana",
			Units:   10,
			Price:   3.5,
			Revenue: 35,
		},
		{
			Date:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Product: "Frijoles Negros",
			Seller:  "Luis",
			Units:   4,
			Price:   2.25,
			Revenue: 9,
		},
		{
			Date:    time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Product: "Aceite de Oliva",
			Seller:  "Ana",
			Units:   2,
			Price:   11.9,
			Revenue: 23.8,
		},
	}
	a.SetData(testData)
	return a
}

func TestNewAPIHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	logger := slog.Default()
	handlers := NewAPIHandlers(analytics, logger)

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}

	if handlers.analytics != analytics {
		t.Error("NewAPIHandlers() should set analytics field")
	}

	if handlers.logger != logger {
		t.Error("NewAPIHandlers() should set logger field")
	}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	return response
}

func TestAPIHandlers_HandleProductRevenue(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/product-revenue", nil)
	w := httptest.NewRecorder()

	handlers.HandleProductRevenue(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("expected cache-control 'public, max-age=300', got %q", cc)
	}

	response := decodeEnvelope(t, w)
	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	data, ok := response["data"].([]interface{})
	if !ok || len(data) != 3 {
		t.Fatalf("expected 3 product revenue rows, got %v", response["data"])
	}

	first, ok := data[0].(map[string]interface{})
	if !ok {
		t.Fatal("invalid row structure")
	}
	if product, _ := first["product"].(string); product != "Arroz Integral" {
		t.Errorf("top product = %q, want Arroz Integral", product)
	}
	if short, _ := first["short_name"].(string); short != "Arroz" {
		t.Errorf("short name = %q, want Arroz", short)
	}
}

func TestAPIHandlers_HandleSellerRevenue(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/seller-revenue", nil)
	w := httptest.NewRecorder()

	handlers.HandleSellerRevenue(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeEnvelope(t, w)
	data, ok := response["data"].([]interface{})
	if !ok || len(data) != 2 {
		t.Fatalf("expected 2 seller rows, got %v", response["data"])
	}

	first, _ := data[0].(map[string]interface{})
	if seller, _ := first["seller"].(string); seller != "Ana" {
		t.Errorf("top seller = %q, want Ana", seller)
	}
	if rank, _ := first["rank"].(float64); rank != 1 {
		t.Errorf("top seller rank = %v, want 1", rank)
	}
}

func TestAPIHandlers_HandleDailySales(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/daily-sales", nil)
	w := httptest.NewRecorder()

	handlers.HandleDailySales(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeEnvelope(t, w)
	data, ok := response["data"].([]interface{})
	if !ok || len(data) != 2 {
		t.Fatalf("expected 2 daily rows, got %v", response["data"])
	}

	first, _ := data[0].(map[string]interface{})
	if date, _ := first["date"].(string); date != "2024-01-02" {
		t.Errorf("first day = %q, want 2024-01-02", date)
	}
}

func TestAPIHandlers_HandleIndicators(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/indicators", nil)
	w := httptest.NewRecorder()

	handlers.HandleIndicators(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeEnvelope(t, w)
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected indicators object")
	}

	mostSold, ok := data["most_sold_units"].(map[string]interface{})
	if !ok {
		t.Fatal("expected most_sold_units object")
	}
	if product, _ := mostSold["product"].(string); product != "Arroz Integral" {
		t.Errorf("most sold product = %q, want Arroz Integral", product)
	}
}

func TestAPIHandlers_HandleSellerProducts(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/seller-products?seller=Ana", nil)
	w := httptest.NewRecorder()

	handlers.HandleSellerProducts(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeEnvelope(t, w)
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected summary object")
	}
	if seller, _ := data["seller"].(string); seller != "Ana" {
		t.Errorf("seller = %q, want Ana", seller)
	}
	products, ok := data["products"].([]interface{})
	if !ok || len(products) != 2 {
		t.Fatalf("expected 2 products for Ana, got %v", data["products"])
	}
}

func TestAPIHandlers_HandleSellerProducts_MissingParam(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/seller-products", nil)
	w := httptest.NewRecorder()

	handlers.HandleSellerProducts(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	response := decodeEnvelope(t, w)
	if success, ok := response["success"].(bool); !ok || success {
		t.Error("expected success=false in response")
	}
}

func TestAPIHandlers_HandleSellerProducts_UnknownSeller(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/seller-products?seller=Nadie", nil)
	w := httptest.NewRecorder()

	handlers.HandleSellerProducts(w, req)

	// Unknown sellers degrade to a zero-value summary, never an error.
	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeEnvelope(t, w)
	data, _ := response["data"].(map[string]interface{})
	if revenue, _ := data["revenue"].(float64); revenue != 0 {
		t.Errorf("unknown seller revenue = %v, want 0", revenue)
	}
	if products, ok := data["products"].([]interface{}); !ok || len(products) != 0 {
		t.Errorf("unknown seller products = %v, want empty list", data["products"])
	}
}

func TestAPIHandlers_HandleSellers(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/sellers", nil)
	w := httptest.NewRecorder()

	handlers.HandleSellers(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeEnvelope(t, w)
	data, ok := response["data"].([]interface{})
	if !ok || len(data) != 2 {
		t.Fatalf("expected 2 sellers, got %v", response["data"])
	}
	if data[0] != "Ana" {
		t.Errorf("first seller = %v, want Ana (rank order)", data[0])
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeEnvelope(t, w)
	data, _ := response["data"].(map[string]interface{})
	if status, _ := data["status"].(string); status != "healthy" {
		t.Errorf("status = %q, want healthy", status)
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()

	handlers.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeEnvelope(t, w)
	data, _ := response["data"].(map[string]interface{})
	if count, _ := data["record_count"].(float64); count != 3 {
		t.Errorf("record_count = %v, want 3", count)
	}
	if sellers, _ := data["sellers"].(float64); sellers != 2 {
		t.Errorf("sellers = %v, want 2", sellers)
	}
}
