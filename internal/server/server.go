package server

import (
	"log/slog"
	"net/http"

	"ventas-dashboard/internal/handlers"
	"ventas-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/product-units", s.apiHandlers.HandleProductUnits)
	s.mux.HandleFunc("GET /api/product-revenue", s.apiHandlers.HandleProductRevenue)
	s.mux.HandleFunc("GET /api/seller-revenue", s.apiHandlers.HandleSellerRevenue)
	s.mux.HandleFunc("GET /api/daily-sales", s.apiHandlers.HandleDailySales)
	s.mux.HandleFunc("GET /api/indicators", s.apiHandlers.HandleIndicators)
	s.mux.HandleFunc("GET /api/sellers", s.apiHandlers.HandleSellers)
	s.mux.HandleFunc("GET /api/seller-products", s.apiHandlers.HandleSellerProducts)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/product-revenue", s.sseHandlers.HandleProductRevenue)
	s.mux.HandleFunc("GET /sse/seller-revenue", s.sseHandlers.HandleSellerRevenue)
	s.mux.HandleFunc("GET /sse/daily-sales", s.sseHandlers.HandleDailySales)
	s.mux.HandleFunc("GET /sse/indicators", s.sseHandlers.HandleIndicators)
	s.mux.HandleFunc("GET /sse/seller-card", s.sseHandlers.HandleSellerCard)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
