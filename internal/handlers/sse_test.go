package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"ventas-dashboard/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	logger := quietLogger()

	handlers := NewSSEHandlers(analytics, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}

	if handlers.analytics != analytics {
		t.Error("NewSSEHandlers() should set analytics field")
	}

	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_renderSellerCard(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	summary := models.SellerSummary{
		Seller:      "Ana",
		Revenue:     58.8,
		MeanRevenue: 33.9,
		Delta:       0.75,
		Rank:        1,
		Products: []models.SellerProduct{
			{Product: "Arroz Integral", Revenue: 35},
			{Product: "Aceite de Oliva", Revenue: 23.8},
		},
	}

	html, err := handlers.renderSellerCard(summary)
	if err != nil {
		t.Fatalf("renderSellerCard() failed: %v", err)
	}

	expectedContent := []string{
		`<div id="seller-card-content">`,
		"Ingresos Totales: Ana",
		"$59",
		"+75.0%",
		"Ranking #1",
		"<th>Producto</th>",
		"<th>Ingresos</th>",
		"Arroz Integral",
		"Aceite de Oliva",
		"$35",
		"$24",
	}

	for _, content := range expectedContent {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
}

func TestSSEHandlers_renderSellerCard_NoData(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	summary := models.SellerSummary{
		Seller:   "Nadie",
		Products: []models.SellerProduct{},
	}

	html, err := handlers.renderSellerCard(summary)
	if err != nil {
		t.Fatalf("renderSellerCard() failed: %v", err)
	}

	if !strings.Contains(html, "No hay datos disponibles para el vendedor Nadie") {
		t.Error("expected placeholder text for seller without records")
	}
	if strings.Contains(html, "<table") {
		t.Error("placeholder card should not contain a table")
	}
}

func TestSSEHandlers_renderIndicators(t *testing.T) {
	analytics := createTestAnalytics()
	handlers := NewSSEHandlers(analytics, quietLogger())

	html, err := handlers.renderIndicators(analytics.Indicators())
	if err != nil {
		t.Fatalf("renderIndicators() failed: %v", err)
	}

	expectedContent := []string{
		`<div id="indicators-content">`,
		"Producto Más Vendido",
		"Producto Menos Vendido",
		"Producto con Más Ingresos",
		"Producto con Menos Ingresos",
		"Arroz Integral",
	}

	for _, content := range expectedContent {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
}

func TestSSEHandlers_HandleSellerCard(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/seller-card?seller=Ana", nil)
	w := httptest.NewRecorder()

	handlers.HandleSellerCard(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Ingresos Totales: Ana") {
		t.Error("expected seller card fragment in SSE stream")
	}
}

func TestSSEHandlers_HandleSellerCard_UnknownSeller(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/seller-card?seller=Nadie", nil)
	w := httptest.NewRecorder()

	handlers.HandleSellerCard(w, req)

	// A seller with zero records must get the placeholder card, not an
	// error response.
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "No hay datos disponibles") {
		t.Error("expected placeholder card for unknown seller")
	}
}

func TestSSEHandlers_HandleSellerCard_DefaultsToTopSeller(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/seller-card", nil)
	w := httptest.NewRecorder()

	handlers.HandleSellerCard(w, req)

	if !strings.Contains(w.Body.String(), "Ingresos Totales: Ana") {
		t.Error("expected card for the top-ranked seller when none selected")
	}
}

func TestSSEHandlers_SignalEndpoints(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		fragment string
	}{
		{"product-revenue", handlers.HandleProductRevenue, "productRevenue"},
		{"seller-revenue", handlers.HandleSellerRevenue, "sellerRevenue"},
		{"daily-sales", handlers.HandleDailySales, "dailySales"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/sse/"+tt.name, nil)
			w := httptest.NewRecorder()

			tt.handler(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}
			if !strings.Contains(w.Body.String(), tt.fragment) {
				t.Errorf("expected signal %q in SSE stream", tt.fragment)
			}
		})
	}
}

func TestSSEHandlers_HandleRefreshAll(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/refresh-all", nil)
	w := httptest.NewRecorder()

	handlers.HandleRefreshAll(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	for _, fragment := range []string{"productRevenue", "sellerRevenue", "dailySales", "indicators-content", "seller-card-content"} {
		if !strings.Contains(body, fragment) {
			t.Errorf("expected %q in refresh-all stream", fragment)
		}
	}
}
