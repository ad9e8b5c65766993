package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"ventas-dashboard/internal/errors"
	"ventas-dashboard/internal/observability"
	"ventas-dashboard/internal/services"
)

const cacheControl = "public, max-age=300"

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) HandleProductUnits(w http.ResponseWriter, r *http.Request) {
	data := h.analytics.ProductUnits()

	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleProductRevenue(w http.ResponseWriter, r *http.Request) {
	data := h.analytics.ProductRevenue()

	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleSellerRevenue(w http.ResponseWriter, r *http.Request) {
	data := h.analytics.SellerRevenue()

	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleDailySales(w http.ResponseWriter, r *http.Request) {
	data := h.analytics.DailySales()

	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	data := h.analytics.Indicators()

	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleSellers(w http.ResponseWriter, r *http.Request) {
	data := h.analytics.Sellers()

	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

// HandleSellerProducts serves the per-seller per-product revenue
// breakdown. The seller query parameter is required; an unknown seller
// yields an empty list, not an error.
func (h *APIHandlers) HandleSellerProducts(w http.ResponseWriter, r *http.Request) {
	seller := r.URL.Query().Get("seller")
	if seller == "" {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.BadRequest("seller query parameter is required"), requestID)
		return
	}

	errors.WriteSuccess(w, h.analytics.SellerSummary(seller))
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
