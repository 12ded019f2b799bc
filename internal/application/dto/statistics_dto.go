package dto

import "github.com/shopspring/decimal"

// ── Query parameters ──────────────────────────────────────────────────────────

// StatisticsQuery parámetros comunes de GET /api/statistics/*.
type StatisticsQuery struct {
	PeriodType  string `query:"period_type"` // custom|monthly|yearly (default monthly)
	Year        int    `query:"year"`
	Month       int    `query:"month"`       // 1-12; opcional en monthly
	StartDate   string `query:"start_date"`  // YYYY-MM-DD, obligatorio en custom
	EndDate     string `query:"end_date"`    // YYYY-MM-DD, obligatorio en custom
	LocationID  string `query:"location_id"` // UUID
	ProductID   string `query:"product_id"`  // UUID
	SellerID    string `query:"seller_id"`   // UUID
	Granularity string `query:"granularity"` // monthly|yearly, solo /periods
	Lang        string `query:"lang"`        // id|en|es; si falta se usa Accept-Language
}

// ── Bloques comunes ───────────────────────────────────────────────────────────

// AggregateDTO métricas base. margin_percent es null cuando revenue es 0.
type AggregateDTO struct {
	TransactionCount int64               `json:"transaction_count"`
	UnitsSold        int64               `json:"units_sold"`
	Revenue          decimal.Decimal     `json:"revenue"`
	Cost             decimal.Decimal     `json:"cost"`
	GrossProfit      decimal.Decimal     `json:"gross_profit"` // revenue - cost
	MarginPercent    decimal.NullDecimal `json:"margin_percent"`
}

// PeriodDTO periodo resuelto de la consulta.
type PeriodDTO struct {
	Type      string `json:"type"`
	Year      int    `json:"year,omitempty"`
	Month     int    `json:"month,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Label     string `json:"label"`
	Days      int    `json:"days"`
}

// FiltersDTO filtros efectivamente aplicados (el vendedor implícito de un UMKM incluido).
type FiltersDTO struct {
	SellerIDs  []string `json:"seller_ids,omitempty"`
	LocationID string   `json:"location_id,omitempty"`
	ProductID  string   `json:"product_id,omitempty"`
}

// BreakdownEntryDTO entrada genérica de un desglose.
type BreakdownEntryDTO struct {
	Key                 string          `json:"key"`
	Label               string          `json:"label"`
	Aggregate           AggregateDTO    `json:"aggregate"`
	ContributionPercent decimal.Decimal `json:"contribution_percent"` // % del ingreso total
}

// ── Por dimensión ─────────────────────────────────────────────────────────────

// BestSellerDTO producto más vendido (por unidades) de una lokasi.
type BestSellerDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
}

// LocationBreakdownDTO desglose por lokasi de venta.
type LocationBreakdownDTO struct {
	BreakdownEntryDTO
	SellerID           string         `json:"seller_id"`
	Address            string         `json:"address"`
	Category           string         `json:"category"`
	District           string         `json:"district"` // kecamatan
	Regency            string         `json:"regency"`  // kabupaten
	Province           string         `json:"province"` // provinsi
	BestSellingProduct *BestSellerDTO `json:"best_selling_product"`
	DistinctProducts   int            `json:"distinct_products"`
}

// ProductBreakdownDTO desglose por producto.
type ProductBreakdownDTO struct {
	BreakdownEntryDTO
	SellerID     string              `json:"seller_id"`
	Category     string              `json:"category"`
	Unit         string              `json:"unit"`
	AvgUnitPrice decimal.NullDecimal `json:"avg_unit_price"` // null si no hay unidades
}

// PeriodBucketDTO desglose por bucket de tiempo (mes o año).
type PeriodBucketDTO struct {
	BreakdownEntryDTO
	StartDate string `json:"start_date"`
}

// ── Respuestas ────────────────────────────────────────────────────────────────

// SummaryBreakdownDTO desgloses incluidos en el resumen.
type SummaryBreakdownDTO struct {
	ByLocation []LocationBreakdownDTO `json:"by_location"`
	ByProduct  []ProductBreakdownDTO  `json:"by_product"`
	ByPeriod   []PeriodBucketDTO      `json:"by_period"`
}

// SummaryDTO respuesta de GET /api/statistics/summary.
type SummaryDTO struct {
	Period                PeriodDTO           `json:"period"`
	Filters               FiltersDTO          `json:"filters"`
	Totals                AggregateDTO        `json:"totals"`
	AvgRevenuePerDay      decimal.Decimal     `json:"avg_revenue_per_day"`
	AvgTransactionsPerDay decimal.Decimal     `json:"avg_transactions_per_day"`
	Granularity           string              `json:"granularity"` // de by_period
	Breakdown             SummaryBreakdownDTO `json:"breakdown"`
}

// LocationReportDTO respuesta de GET /api/statistics/locations.
type LocationReportDTO struct {
	Period    PeriodDTO              `json:"period"`
	Filters   FiltersDTO             `json:"filters"`
	Totals    AggregateDTO           `json:"totals"`
	Locations []LocationBreakdownDTO `json:"locations"`
}

// ProductReportDTO respuesta de GET /api/statistics/products.
type ProductReportDTO struct {
	Period   PeriodDTO             `json:"period"`
	Filters  FiltersDTO            `json:"filters"`
	Totals   AggregateDTO          `json:"totals"`
	Products []ProductBreakdownDTO `json:"products"`
}

// PeriodReportDTO respuesta de GET /api/statistics/periods (buckets en orden cronológico).
type PeriodReportDTO struct {
	Period      PeriodDTO         `json:"period"`
	Filters     FiltersDTO        `json:"filters"`
	Granularity string            `json:"granularity"`
	Totals      AggregateDTO      `json:"totals"`
	Buckets     []PeriodBucketDTO `json:"buckets"`
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

// DeltasDTO variación % mes actual vs mes anterior.
// Con mes anterior en cero el valor es 100 (hubo actividad) o 0 (no hubo); es una convención, no un porcentaje real.
type DeltasDTO struct {
	RevenuePercent      decimal.Decimal `json:"revenue_percent"`
	TransactionsPercent decimal.Decimal `json:"transactions_percent"`
	UnitsPercent        decimal.Decimal `json:"units_percent"`
	GrossProfitPercent  decimal.Decimal `json:"gross_profit_percent"`
}

// DashboardDTO respuesta de GET /api/statistics/dashboard.
type DashboardDTO struct {
	Month              string                 `json:"month"` // YYYY-MM
	MonthLabel         string                 `json:"month_label"`
	PreviousMonth      string                 `json:"previous_month"`
	PreviousMonthLabel string                 `json:"previous_month_label"`
	Current            AggregateDTO           `json:"current"`
	Previous           AggregateDTO           `json:"previous"`
	Deltas             DeltasDTO              `json:"deltas"`
	TopProducts        []ProductBreakdownDTO  `json:"top_products"`
	TopLocations       []LocationBreakdownDTO `json:"top_locations"`
}
