package models

import "time"

// Sale is one row of the monthly sales table. Revenue is derived at
// parse time as Units * Price.
type Sale struct {
	Date    time.Time
	Product string
	Seller  string
	Units   int
	Price   float64
	Revenue float64
}

type ProductUnits struct {
	Product string `json:"product"`
	Units   int    `json:"units"`
}

type ProductRevenue struct {
	Product string `json:"product"`
	// ShortName is the first word of the product name, used as the
	// bar chart axis label.
	ShortName string  `json:"short_name"`
	Revenue   float64 `json:"revenue"`
}

type SellerRevenue struct {
	Seller  string  `json:"seller"`
	Revenue float64 `json:"revenue"`
	Rank    int     `json:"rank"`
}

type DailySales struct {
	Date    string  `json:"date"`
	Units   int     `json:"units"`
	Revenue float64 `json:"revenue"`
}

type SellerProduct struct {
	Product string  `json:"product"`
	Revenue float64 `json:"revenue"`
}

// ProductIndicator is one cell of the indicator grid. Product is "N/A"
// when the table is empty.
type ProductIndicator struct {
	Product string  `json:"product"`
	Value   float64 `json:"value"`
}

type ProductIndicators struct {
	MostSoldUnits  ProductIndicator `json:"most_sold_units"`
	LeastSoldUnits ProductIndicator `json:"least_sold_units"`
	TopRevenue     ProductIndicator `json:"top_revenue"`
	LowestRevenue  ProductIndicator `json:"lowest_revenue"`
}

// SellerSummary backs the drill-down card for one seller. Delta is the
// seller's revenue relative to the mean of all sellers' totals, as a
// fraction (0.25 = 25% above the mean). A seller with no records gets
// zero values and an empty product list.
type SellerSummary struct {
	Seller      string          `json:"seller"`
	Revenue     float64         `json:"revenue"`
	MeanRevenue float64         `json:"mean_revenue"`
	Delta       float64         `json:"delta"`
	Rank        int             `json:"rank"`
	Products    []SellerProduct `json:"products"`
}
