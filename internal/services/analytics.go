package services

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ventas-dashboard/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize    = 10000
	maxWorkers   = 10
	cacheVersion = "v1"
	cacheDir     = ".cache"

	// Placeholder product name for indicators over an empty table.
	NoData = "N/A"
)

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2006-01-02 15:04:05"}

// Snapshot holds every aggregate view derived from one load of the
// sales table. It is built once and never mutated; each view sums to
// the same grand totals as the raw table.
type Snapshot struct {
	ProductUnits   []models.ProductUnits             `json:"product_units"`
	ProductRevenue []models.ProductRevenue           `json:"product_revenue"`
	SellerRevenue  []models.SellerRevenue            `json:"seller_revenue"`
	DailySales     []models.DailySales               `json:"daily_sales"`
	SellerProducts map[string][]models.SellerProduct `json:"seller_products"`
	Indicators     models.ProductIndicators          `json:"indicators"`
	TotalUnits     int                               `json:"total_units"`
	TotalRevenue   float64                           `json:"total_revenue"`
	LastModified   time.Time                         `json:"last_modified"`
	RecordCount    int64                             `json:"record_count"`
}

type Analytics struct {
	mu               sync.RWMutex
	snapshot         *Snapshot
	source           string
	recordsProcessed atomic.Int64
	logger           *slog.Logger
}

func NewAnalytics() *Analytics {
	logger := slog.Default()
	return &Analytics{
		snapshot: emptySnapshot(),
		logger:   logger,
	}
}

// SetData replaces the snapshot with aggregates computed from the given
// records. Used by tests and by callers that already hold parsed rows.
func (a *Analytics) SetData(sales []models.Sale) {
	a.installSnapshot(buildSnapshot(newGroups(sales), int64(len(sales))))
}

// LoadFromCSV loads the sales table from a local path or an http(s)
// URL. A source that cannot be opened is an error; a source with no
// parseable rows yields an empty snapshot with placeholder views.
func (a *Analytics) LoadFromCSV(ctx context.Context, source string) error {
	a.source = source

	// Reuse the disk cache when the local file is older than it.
	// URL sources cannot be stat'ed and always recompute.
	if cached, err := a.loadFromCache(source); err == nil {
		fileInfo, err := os.Stat(source)
		if err == nil && fileInfo.ModTime().Before(cached.LastModified) {
			a.installSnapshot(cached)
			a.logger.Info("loaded from cache", "records", cached.RecordCount)
			return nil
		}
	}

	start := time.Now()
	a.logger.Info("processing sales table", "source", source)

	reader, err := a.openSource(ctx, source)
	if err != nil {
		return err
	}
	defer reader.Close()

	if err := a.streamProcess(ctx, reader); err != nil {
		return fmt.Errorf("process csv: %w", err)
	}

	if err := a.saveToCache(source); err != nil {
		a.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	count := a.recordsProcessed.Load()
	a.logger.Info("sales table processed",
		"records", count,
		"duration", duration,
	)

	return nil
}

func (a *Analytics) openSource(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("download csv: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("download csv: unexpected status %s", resp.Status)
		}
		return resp.Body, nil
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return file, nil
}

func (a *Analytics) streamProcess(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024) // 10MB buffer

	global := newGroups(nil)
	recordCount := int64(0)

	// Skip header. A file without even a header still serves, as an
	// empty snapshot.
	if !scanner.Scan() {
		a.logger.Warn("empty sales table, serving placeholder views")
		a.installSnapshot(buildSnapshot(global, 0))
		return scanner.Err()
	}

	var mu sync.Mutex
	batch := make([]string, 0, batchSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch = append(batch, scanner.Text())

		if len(batch) >= batchSize {
			if err := a.processBatch(ctx, batch, &mu, global, &recordCount); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := a.processBatch(ctx, batch, &mu, global, &recordCount); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan error: %w", err)
	}

	if recordCount == 0 {
		a.logger.Warn("no valid records in sales table, serving placeholder views")
	}

	a.installSnapshot(buildSnapshot(global, recordCount))
	return nil
}

func (a *Analytics) installSnapshot(s *Snapshot) {
	a.mu.Lock()
	a.snapshot = s
	a.mu.Unlock()
	a.recordsProcessed.Store(s.RecordCount)
}

// groups carries the groupby maps built up during a load.
type groups struct {
	products map[string]*productAgg
	sellers  map[string]float64
	daily    map[string]*dailyAgg
	drill    map[string]map[string]float64 // seller -> product -> revenue
}

type productAgg struct {
	units   int
	revenue float64
}

type dailyAgg struct {
	units   int
	revenue float64
}

func newGroups(sales []models.Sale) *groups {
	g := &groups{
		products: make(map[string]*productAgg),
		sellers:  make(map[string]float64),
		daily:    make(map[string]*dailyAgg),
		drill:    make(map[string]map[string]float64),
	}
	for _, s := range sales {
		g.add(s)
	}
	return g
}

func (g *groups) add(s models.Sale) {
	if g.products[s.Product] == nil {
		g.products[s.Product] = &productAgg{}
	}
	g.products[s.Product].units += s.Units
	g.products[s.Product].revenue += s.Revenue

	g.sellers[s.Seller] += s.Revenue

	day := s.Date.Format("2006-01-02")
	if g.daily[day] == nil {
		g.daily[day] = &dailyAgg{}
	}
	g.daily[day].units += s.Units
	g.daily[day].revenue += s.Revenue

	if g.drill[s.Seller] == nil {
		g.drill[s.Seller] = make(map[string]float64)
	}
	g.drill[s.Seller][s.Product] += s.Revenue
}

func (g *groups) merge(local *groups) {
	for product, agg := range local.products {
		if g.products[product] == nil {
			g.products[product] = &productAgg{}
		}
		g.products[product].units += agg.units
		g.products[product].revenue += agg.revenue
	}
	for seller, revenue := range local.sellers {
		g.sellers[seller] += revenue
	}
	for day, agg := range local.daily {
		if g.daily[day] == nil {
			g.daily[day] = &dailyAgg{}
		}
		g.daily[day].units += agg.units
		g.daily[day].revenue += agg.revenue
	}
	for seller, products := range local.drill {
		if g.drill[seller] == nil {
			g.drill[seller] = make(map[string]float64)
		}
		for product, revenue := range products {
			g.drill[seller][product] += revenue
		}
	}
}

func (a *Analytics) processBatch(ctx context.Context, batch []string, mu *sync.Mutex,
	global *groups, recordCount *int64) error {

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)

	type processedSale struct {
		sale  models.Sale
		valid bool
	}

	saleChan := make(chan processedSale, len(batch))

	for _, line := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			record := strings.Split(line, ",")
			sale, err := parseSaleFast(record)
			if err != nil {
				saleChan <- processedSale{valid: false}
				return nil // skip invalid records
			}

			saleChan <- processedSale{sale: sale, valid: true}
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		close(saleChan)
		return err
	}
	close(saleChan)

	// Aggregate sequentially into local maps, then merge under the lock.
	local := newGroups(nil)
	localCount := int64(0)

	for ps := range saleChan {
		if ps.valid {
			local.add(ps.sale)
			localCount++
		}
	}

	mu.Lock()
	global.merge(local)
	*recordCount += localCount
	mu.Unlock()

	return nil
}

// parseSaleFast parses one CSV line with the column order
// Fecha, Producto, Vendedor, Unidades Vendidas, Precio.
func parseSaleFast(record []string) (models.Sale, error) {
	if len(record) < 5 {
		return models.Sale{}, fmt.Errorf("insufficient columns")
	}

	date, err := parseDate(strings.TrimSpace(record[0]))
	if err != nil {
		return models.Sale{}, err
	}

	product := strings.TrimSpace(record[1])
	seller := strings.TrimSpace(record[2])
	if product == "" || seller == "" {
		return models.Sale{}, fmt.Errorf("missing product or seller")
	}

	units, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil {
		return models.Sale{}, err
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
	if err != nil {
		return models.Sale{}, err
	}

	return models.Sale{
		Date:    date,
		Product: product,
		Seller:  seller,
		Units:   units,
		Price:   price,
		Revenue: float64(units) * price,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

func emptySnapshot() *Snapshot {
	return buildSnapshot(newGroups(nil), 0)
}

func buildSnapshot(g *groups, recordCount int64) *Snapshot {
	snapshot := &Snapshot{
		ProductUnits:   sortProductUnits(g.products),
		ProductRevenue: sortProductRevenue(g.products),
		SellerRevenue:  rankSellers(g.sellers),
		DailySales:     sortDailySales(g.daily),
		SellerProducts: sortSellerProducts(g.drill),
		LastModified:   time.Now(),
		RecordCount:    recordCount,
	}

	for _, pu := range snapshot.ProductUnits {
		snapshot.TotalUnits += pu.Units
	}
	for _, pr := range snapshot.ProductRevenue {
		snapshot.TotalRevenue += pr.Revenue
	}

	snapshot.Indicators = buildIndicators(snapshot.ProductUnits, snapshot.ProductRevenue)
	return snapshot
}

func sortProductUnits(products map[string]*productAgg) []models.ProductUnits {
	result := make([]models.ProductUnits, 0, len(products))
	for product, agg := range products {
		result = append(result, models.ProductUnits{Product: product, Units: agg.units})
	}
	slices.SortFunc(result, func(a, b models.ProductUnits) int {
		if a.Units != b.Units {
			return b.Units - a.Units
		}
		return strings.Compare(a.Product, b.Product)
	})
	return result
}

func sortProductRevenue(products map[string]*productAgg) []models.ProductRevenue {
	result := make([]models.ProductRevenue, 0, len(products))
	for product, agg := range products {
		result = append(result, models.ProductRevenue{
			Product:   product,
			ShortName: shortName(product),
			Revenue:   agg.revenue,
		})
	}
	slices.SortFunc(result, func(a, b models.ProductRevenue) int {
		if a.Revenue > b.Revenue {
			return -1
		}
		if a.Revenue < b.Revenue {
			return 1
		}
		return strings.Compare(a.Product, b.Product)
	})
	return result
}

// rankSellers sorts sellers by revenue descending and assigns dense
// ranks: tied revenues share a rank and the next distinct revenue
// increments it by one.
func rankSellers(sellers map[string]float64) []models.SellerRevenue {
	result := make([]models.SellerRevenue, 0, len(sellers))
	for seller, revenue := range sellers {
		result = append(result, models.SellerRevenue{Seller: seller, Revenue: revenue})
	}
	slices.SortFunc(result, func(a, b models.SellerRevenue) int {
		if a.Revenue > b.Revenue {
			return -1
		}
		if a.Revenue < b.Revenue {
			return 1
		}
		return strings.Compare(a.Seller, b.Seller)
	})

	rank := 0
	prev := 0.0
	for i := range result {
		if i == 0 || result[i].Revenue != prev {
			rank++
			prev = result[i].Revenue
		}
		result[i].Rank = rank
	}
	return result
}

func sortDailySales(daily map[string]*dailyAgg) []models.DailySales {
	result := make([]models.DailySales, 0, len(daily))
	for day, agg := range daily {
		result = append(result, models.DailySales{Date: day, Units: agg.units, Revenue: agg.revenue})
	}
	slices.SortFunc(result, func(a, b models.DailySales) int {
		return strings.Compare(a.Date, b.Date)
	})
	return result
}

func sortSellerProducts(drill map[string]map[string]float64) map[string][]models.SellerProduct {
	result := make(map[string][]models.SellerProduct, len(drill))
	for seller, products := range drill {
		rows := make([]models.SellerProduct, 0, len(products))
		for product, revenue := range products {
			rows = append(rows, models.SellerProduct{Product: product, Revenue: revenue})
		}
		slices.SortFunc(rows, func(a, b models.SellerProduct) int {
			if a.Revenue > b.Revenue {
				return -1
			}
			if a.Revenue < b.Revenue {
				return 1
			}
			return strings.Compare(a.Product, b.Product)
		})
		result[seller] = rows
	}
	return result
}

func buildIndicators(byUnits []models.ProductUnits, byRevenue []models.ProductRevenue) models.ProductIndicators {
	ind := models.ProductIndicators{
		MostSoldUnits:  models.ProductIndicator{Product: NoData},
		LeastSoldUnits: models.ProductIndicator{Product: NoData},
		TopRevenue:     models.ProductIndicator{Product: NoData},
		LowestRevenue:  models.ProductIndicator{Product: NoData},
	}

	if len(byUnits) > 0 {
		top := byUnits[0]
		bottom := byUnits[len(byUnits)-1]
		ind.MostSoldUnits = models.ProductIndicator{Product: top.Product, Value: float64(top.Units)}
		ind.LeastSoldUnits = models.ProductIndicator{Product: bottom.Product, Value: float64(bottom.Units)}
	}
	if len(byRevenue) > 0 {
		top := byRevenue[0]
		bottom := byRevenue[len(byRevenue)-1]
		ind.TopRevenue = models.ProductIndicator{Product: top.Product, Value: top.Revenue}
		ind.LowestRevenue = models.ProductIndicator{Product: bottom.Product, Value: bottom.Revenue}
	}
	return ind
}

func shortName(product string) string {
	if fields := strings.Fields(product); len(fields) > 0 {
		return fields[0]
	}
	return product
}

// Cache management
func (a *Analytics) getCacheFilename(source string) string {
	name := strings.NewReplacer("/", "_", ":", "_").Replace(source)
	return fmt.Sprintf("%s/%s_%s.gob", cacheDir, name, cacheVersion)
}

func (a *Analytics) saveToCache(source string) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return err
	}

	filename := a.getCacheFilename(source)
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	a.mu.RLock()
	defer a.mu.RUnlock()

	encoder := gob.NewEncoder(file)
	return encoder.Encode(a.snapshot)
}

func (a *Analytics) loadFromCache(source string) (*Snapshot, error) {
	filename := a.getCacheFilename(source)
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snapshot Snapshot
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// Fast query methods - O(1) lookups from the precomputed snapshot
func (a *Analytics) ProductUnits() []models.ProductUnits {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot.ProductUnits
}

func (a *Analytics) ProductRevenue() []models.ProductRevenue {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot.ProductRevenue
}

func (a *Analytics) SellerRevenue() []models.SellerRevenue {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot.SellerRevenue
}

func (a *Analytics) DailySales() []models.DailySales {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot.DailySales
}

func (a *Analytics) Indicators() models.ProductIndicators {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot.Indicators
}

// Sellers returns seller names in rank order, for the dropdown.
func (a *Analytics) Sellers() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.snapshot.SellerRevenue))
	for _, sr := range a.snapshot.SellerRevenue {
		names = append(names, sr.Seller)
	}
	return names
}

func (a *Analytics) SellerProducts(seller string) []models.SellerProduct {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if rows, ok := a.snapshot.SellerProducts[seller]; ok {
		return rows
	}
	return []models.SellerProduct{}
}

// SellerSummary builds the drill-down card data for one seller. An
// unknown seller yields a zero-value summary rather than an error.
func (a *Analytics) SellerSummary(seller string) models.SellerSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	summary := models.SellerSummary{
		Seller:   seller,
		Products: []models.SellerProduct{},
	}

	if len(a.snapshot.SellerRevenue) > 0 {
		summary.MeanRevenue = a.snapshot.TotalRevenue / float64(len(a.snapshot.SellerRevenue))
	}

	for _, sr := range a.snapshot.SellerRevenue {
		if sr.Seller == seller {
			summary.Revenue = sr.Revenue
			summary.Rank = sr.Rank
			break
		}
	}

	if rows, ok := a.snapshot.SellerProducts[seller]; ok {
		summary.Products = rows
	}

	if summary.MeanRevenue > 0 {
		summary.Delta = (summary.Revenue - summary.MeanRevenue) / summary.MeanRevenue
	}

	return summary
}

func (a *Analytics) TotalRevenue() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot.TotalRevenue
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"record_count":   a.snapshot.RecordCount,
		"last_processed": a.snapshot.LastModified,
		"products":       len(a.snapshot.ProductUnits),
		"sellers":        len(a.snapshot.SellerRevenue),
		"days":           len(a.snapshot.DailySales),
		"total_units":    a.snapshot.TotalUnits,
		"total_revenue":  a.snapshot.TotalRevenue,
	}
}
