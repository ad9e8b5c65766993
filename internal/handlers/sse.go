package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"ventas-dashboard/internal/models"
	"ventas-dashboard/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

const maxTableRows = 50

var sellerCardTemplate = template.Must(template.New("sellerCard").Parse(`
<div id="seller-card-content">
{{if .HasData}}
<div class="seller-summary">
<h4>Ingresos Totales: {{.Summary.Seller}}</h4>
<p class="summary-number">${{printf "%.0f" .Summary.Revenue}}</p>
<p class="summary-delta {{if ge .DeltaPercent 0.0}}delta-up{{else}}delta-down{{end}}">{{printf "%+.1f%%" .DeltaPercent}} vs promedio</p>
<p class="summary-rank">Ranking #{{.Summary.Rank}}</p>
</div>
<table class="modern-table">
<thead><tr><th>Producto</th><th>Ingresos</th></tr></thead>
<tbody>
{{range $i, $item := .Summary.Products}}{{if lt $i $.MaxRows}}<tr>
<td>{{.Product}}</td>
<td><strong>${{printf "%.0f" .Revenue}}</strong></td>
</tr>{{end}}{{end}}
</tbody>
</table>
{{else}}
<div class="seller-summary empty">No hay datos disponibles para el vendedor {{.Summary.Seller}}</div>
{{end}}
</div>`))

var indicatorsTemplate = template.Must(template.New("indicators").Parse(`
<div id="indicators-content">
<div class="indicator-grid">
<div class="indicator-card">
<span class="indicator-label">Producto Más Vendido</span>
<span class="indicator-product">{{.MostSoldUnits.Product}}</span>
<span class="indicator-value">{{printf "%.0f" .MostSoldUnits.Value}} unidades</span>
</div>
<div class="indicator-card">
<span class="indicator-label">Producto Menos Vendido</span>
<span class="indicator-product">{{.LeastSoldUnits.Product}}</span>
<span class="indicator-value">{{printf "%.0f" .LeastSoldUnits.Value}} unidades</span>
</div>
<div class="indicator-card">
<span class="indicator-label">Producto con Más Ingresos</span>
<span class="indicator-product">{{.TopRevenue.Product}}</span>
<span class="indicator-value">${{printf "%.0f" .TopRevenue.Value}}</span>
</div>
<div class="indicator-card">
<span class="indicator-label">Producto con Menos Ingresos</span>
<span class="indicator-product">{{.LowestRevenue.Product}}</span>
<span class="indicator-value">${{printf "%.0f" .LowestRevenue.Value}}</span>
</div>
</div>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

type sellerCardData struct {
	Summary      models.SellerSummary
	DeltaPercent float64
	HasData      bool
	MaxRows      int
}

func (h *SSEHandlers) renderSellerCard(summary models.SellerSummary) (string, error) {
	var buf strings.Builder

	data := sellerCardData{
		Summary:      summary,
		DeltaPercent: summary.Delta * 100,
		HasData:      len(summary.Products) > 0,
		MaxRows:      maxTableRows,
	}

	err := sellerCardTemplate.Execute(&buf, data)
	return buf.String(), err
}

func (h *SSEHandlers) renderIndicators(ind models.ProductIndicators) (string, error) {
	var buf strings.Builder
	err := indicatorsTemplate.Execute(&buf, ind)
	return buf.String(), err
}

func (h *SSEHandlers) HandleProductRevenue(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.analytics.ProductRevenue()
	jsonData, err := json.Marshal(map[string]any{
		"productRevenue": data,
	})
	if err != nil {
		h.logger.Error("marshal product revenue", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleSellerRevenue(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.analytics.SellerRevenue()
	jsonData, err := json.Marshal(map[string]any{
		"sellerRevenue": data,
	})
	if err != nil {
		h.logger.Error("marshal seller revenue", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleDailySales(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.analytics.DailySales()
	jsonData, err := json.Marshal(map[string]any{
		"dailySales": data,
	})
	if err != nil {
		h.logger.Error("marshal daily sales", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	html, err := h.renderIndicators(h.analytics.Indicators())
	if err != nil {
		h.logger.Error("render indicators", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// selectedSeller reads the dropdown's seller signal, falling back to a
// plain query parameter and then to the top-ranked seller.
func (h *SSEHandlers) selectedSeller(r *http.Request) string {
	var signals struct {
		Seller string `json:"seller"`
	}
	if err := datastar.ReadSignals(r, &signals); err == nil && signals.Seller != "" {
		return signals.Seller
	}

	if seller := r.URL.Query().Get("seller"); seller != "" {
		return seller
	}

	if sellers := h.analytics.Sellers(); len(sellers) > 0 {
		return sellers[0]
	}
	return ""
}

// HandleSellerCard redraws the drill-down card for the seller selected
// in the dropdown. A seller with no records gets the placeholder card.
func (h *SSEHandlers) HandleSellerCard(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	summary := h.analytics.SellerSummary(h.selectedSeller(r))
	html, err := h.renderSellerCard(summary)
	if err != nil {
		h.logger.Error("render seller card", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleRefreshAll redraws every panel in one stream: chart signals,
// the indicator grid, and the drill-down card for the current seller.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	allSignals, err := json.Marshal(map[string]any{
		"productRevenue": h.analytics.ProductRevenue(),
		"sellerRevenue":  h.analytics.SellerRevenue(),
		"dailySales":     h.analytics.DailySales(),
	})
	if err != nil {
		h.logger.Error("marshal refresh signals", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	indicators, err := h.renderIndicators(h.analytics.Indicators())
	if err != nil {
		h.logger.Error("render indicators", "error", err)
		return
	}
	sse.PatchElements(indicators)

	summary := h.analytics.SellerSummary(h.selectedSeller(r))
	card, err := h.renderSellerCard(summary)
	if err != nil {
		h.logger.Error("render seller card", "error", err)
		return
	}
	sse.PatchElements(card)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
