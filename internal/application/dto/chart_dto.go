package dto

import "github.com/shopspring/decimal"

// ChartQuery parámetros de GET /api/charts/*.
type ChartQuery struct {
	Year       int    `query:"year"`        // default: año actual
	MonthStart int    `query:"month_start"` // 1-12, default 1
	MonthEnd   int    `query:"month_end"`   // 1-12, default 12
	SellerID   string `query:"seller_id"`   // UUID; solo admins pueden elegir vendedor
	Lang       string `query:"lang"`
}

// SalesChartPointDTO ventas de un mes.
type SalesChartPointDTO struct {
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	MonthName        string          `json:"month_name"`
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount int64           `json:"transaction_count"`
}

// SalesChartDTO serie mensual de ventas (todos los meses del rango, en cero si no hubo ventas).
type SalesChartDTO struct {
	Year       int                  `json:"year"`
	MonthStart int                  `json:"month_start"`
	MonthEnd   int                  `json:"month_end"`
	Points     []SalesChartPointDTO `json:"points"`
}

// SellerChartRowDTO ventas de un vendedor en un mes.
type SellerChartRowDTO struct {
	SellerID         string          `json:"seller_id"`
	SellerName       string          `json:"seller_name"`
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	MonthName        string          `json:"month_name"`
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount int64           `json:"transaction_count"`
}

// SellerChartDTO filas vendedor × mes ordenadas por nombre de vendedor y mes.
type SellerChartDTO struct {
	Year       int                 `json:"year"`
	MonthStart int                 `json:"month_start"`
	MonthEnd   int                 `json:"month_end"`
	Rows       []SellerChartRowDTO `json:"rows"`
}

// ChartSummaryDTO totales del rango del gráfico.
type ChartSummaryDTO struct {
	Year             int             `json:"year"`
	MonthStart       int             `json:"month_start"`
	MonthEnd         int             `json:"month_end"`
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount int64           `json:"transaction_count"`
	UnitsSold        int64           `json:"units_sold"`
	ActiveSellers    int             `json:"active_sellers"`
}
