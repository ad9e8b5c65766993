// Package templates holds the server-rendered dashboard page. The page
// is a static shell: every panel is filled in over SSE, and charts are
// drawn client-side from datastar signals.
package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

type dashboardData struct {
	Title         string
	Sellers       []string
	DefaultSeller string
}

// Dashboard returns the full dashboard page for the given seller list.
// The dropdown defaults to the first (top-ranked) seller.
func Dashboard(title string, sellers []string) templ.Component {
	data := dashboardData{Title: title, Sellers: sellers}
	if len(sellers) > 0 {
		data.DefaultSeller = sellers[0]
	}

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return dashboardTemplate.Execute(w, data)
	})
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.3/dist/chart.umd.min.js"></script>
<style>
:root { --tan: #E6A57E; --brown: #B07D62; --sage: #A7BFA7; --sand: #CFC2A4; }
body { font-family: system-ui, sans-serif; margin: 0; background: #faf8f5; color: #333; }
h1 { text-align: center; margin: 1.5rem 0; }
.container { max-width: 1200px; margin: 0 auto; padding: 0 1rem 3rem; }
.row { display: flex; flex-wrap: wrap; gap: 1rem; margin-bottom: 1rem; }
.panel { background: #fff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,.12); padding: 1rem; flex: 1 1 100%; }
.panel.half { flex: 1 1 calc(50% - 1rem); min-width: 320px; }
.panel h3 { margin-top: 0; text-align: center; }
.modern-table { width: 100%; border-collapse: collapse; }
.modern-table th, .modern-table td { padding: .5rem .75rem; border-bottom: 1px solid #eee; text-align: left; }
.modern-table th { background: var(--sage); }
.indicator-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 1rem; }
.indicator-card { background: #faf8f5; border-radius: 8px; padding: 1rem; text-align: center; display: flex; flex-direction: column; gap: .25rem; }
.indicator-label { font-size: .85rem; color: #777; }
.indicator-product { font-weight: 600; }
.indicator-value { font-size: 1.5rem; color: var(--brown); }
.seller-summary { text-align: center; margin-bottom: 1rem; }
.seller-summary .summary-number { font-size: 2rem; margin: .25rem 0; }
.delta-up { color: #2e7d32; }
.delta-down { color: #c62828; }
.seller-summary.empty { padding: 2rem; color: #777; }
select { padding: .5rem; border-radius: 6px; border: 1px solid #ccc; min-width: 240px; }
.loading { text-align: center; color: #999; padding: 2rem; }
</style>
</head>
<body data-signals="{productRevenue: [], sellerRevenue: [], dailySales: [], seller: '{{.DefaultSeller}}'}" data-on-load="@get('/sse/refresh-all')">
<div class="container">
<h1>{{.Title}}</h1>

<div class="row">
<div class="panel half">
<h3>Ingresos por Producto</h3>
<canvas id="product-revenue-chart" data-effect="window.ventas.renderProductBar($productRevenue)"></canvas>
</div>
<div class="panel half">
<h3>Distribución de Ingresos por Vendedor</h3>
<canvas id="seller-pie-chart" data-effect="window.ventas.renderSellerPie($sellerRevenue)"></canvas>
</div>
</div>

<div class="row">
<div class="panel">
<h3>Ingresos y Unidades Vendidas Diarias</h3>
<canvas id="daily-sales-chart" data-effect="window.ventas.renderDailyLine($dailySales)"></canvas>
</div>
</div>

<div class="row">
<div class="panel">
<h3>Ranking de Ingresos Totales por Vendedor</h3>
<canvas id="seller-ranking-chart" data-effect="window.ventas.renderSellerRanking($sellerRevenue)"></canvas>
</div>
</div>

<div class="row">
<div class="panel">
<h3>Indicadores Clave de Ventas por Producto</h3>
<div id="indicators-content"><div class="loading">Cargando indicadores…</div></div>
</div>
</div>

<div class="row">
<div class="panel">
<h3>Análisis por Vendedor</h3>
<select data-bind-seller data-on-change="@get('/sse/seller-card')">
{{range .Sellers}}<option value="{{.}}">{{.}}</option>
{{end}}</select>
<div id="seller-card-content"><div class="loading">Seleccione un vendedor…</div></div>
</div>
</div>

</div>
<script>
(function() {
	const palette = ['#E6A57E', '#B07D62', '#A7BFA7', '#CFC2A4'];
	const charts = {};

	function upsert(id, config) {
		if (charts[id]) {
			charts[id].data = config.data;
			charts[id].update();
			return;
		}
		const el = document.getElementById(id);
		if (el) charts[id] = new Chart(el, config);
	}

	window.ventas = {
		renderProductBar(rows) {
			if (!rows || !rows.length) return;
			upsert('product-revenue-chart', {
				type: 'bar',
				data: {
					labels: rows.map(r => r.short_name),
					datasets: [{ label: 'Ingresos', data: rows.map(r => r.revenue), backgroundColor: palette }]
				},
				options: { plugins: { legend: { display: false } } }
			});
		},
		renderSellerPie(rows) {
			if (!rows || !rows.length) return;
			upsert('seller-pie-chart', {
				type: 'pie',
				data: {
					labels: rows.map(r => r.seller),
					datasets: [{ data: rows.map(r => r.revenue), backgroundColor: palette }]
				}
			});
		},
		renderDailyLine(rows) {
			if (!rows || !rows.length) return;
			upsert('daily-sales-chart', {
				type: 'line',
				data: {
					labels: rows.map(r => r.date),
					datasets: [
						{ label: 'Ingresos Diarios', data: rows.map(r => r.revenue), borderColor: palette[0], yAxisID: 'y' },
						{ label: 'Unidades Vendidas Diarias', data: rows.map(r => r.units), borderColor: palette[1], yAxisID: 'y2' }
					]
				},
				options: {
					scales: {
						y: { position: 'left', title: { display: true, text: 'Ingresos' } },
						y2: { position: 'right', grid: { drawOnChartArea: false }, title: { display: true, text: 'Unidades Vendidas' } }
					}
				}
			});
		},
		renderSellerRanking(rows) {
			if (!rows || !rows.length) return;
			upsert('seller-ranking-chart', {
				type: 'bar',
				data: {
					labels: rows.map(r => '#' + r.rank + ' ' + r.seller),
					datasets: [{ label: 'Ingresos', data: rows.map(r => r.revenue), backgroundColor: palette }]
				},
				options: { plugins: { legend: { display: false } } }
			});
		}
	};
})();
</script>
</body>
</html>
`))
