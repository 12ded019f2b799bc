package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/umkm-stats-api/internal/application/dto"
	"github.com/jhoicas/umkm-stats-api/internal/application/statistics"
	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
	"github.com/jhoicas/umkm-stats-api/internal/domain/period"
	"github.com/jhoicas/umkm-stats-api/pkg/logger"
)

// HeaderCache indica si la respuesta salió de la caché (HIT) o se calculó (MISS).
const HeaderCache = "X-Cache"

// StatisticsHandler maneja los endpoints de estadísticas de ventas y gráficos.
type StatisticsHandler struct {
	svc           *statistics.CachedStatistics
	defaultLocale string
	log           *logger.Logger
}

// NewStatisticsHandler construye el handler. defaultLocale se usa si ni lang ni Accept-Language coinciden.
func NewStatisticsHandler(svc *statistics.CachedStatistics, defaultLocale string, log *logger.Logger) *StatisticsHandler {
	return &StatisticsHandler{svc: svc, defaultLocale: defaultLocale, log: log}
}

type statisticsOp func(ctx context.Context, actor entity.Actor, q dto.StatisticsQuery) (statistics.Result, error)

// GetSummary godoc
// @Summary      Resumen de ventas del periodo
// @Description  Totales (transacciones, unidades, ingresos, costo, ganancia bruta, margen), promedios
//               diarios y desgloses por lokasi, producto y mes (o año si period_type=yearly).
// @Tags         statistics
// @Security     Bearer
// @Produce      json
// @Param        period_type  query  string  false  "custom | monthly | yearly (default monthly)"
// @Param        year         query  int     false  "Año (obligatorio para monthly y yearly)"
// @Param        month        query  int     false  "Mes 1-12 (monthly)"
// @Param        start_date   query  string  false  "YYYY-MM-DD (custom)"
// @Param        end_date     query  string  false  "YYYY-MM-DD (custom)"
// @Param        location_id  query  string  false  "UUID de lokasi"
// @Param        product_id   query  string  false  "UUID de producto"
// @Param        seller_id    query  string  false  "UUID de vendedor (solo admin)"
// @Param        lang         query  string  false  "id | en | es (default Accept-Language)"
// @Success      200  {object}  dto.SummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/statistics/summary [get]
func (h *StatisticsHandler) GetSummary(c *fiber.Ctx) error {
	return h.serveStatistics(c, h.svc.Summary)
}

// GetLocations godoc
// @Summary      Ventas por lokasi
// @Description  Desglose por lokasi de venta con categoría, región y el producto más vendido por unidades, ordenado por ingresos.
// @Tags         statistics
// @Security     Bearer
// @Produce      json
// @Param        period_type  query  string  false  "custom | monthly | yearly"
// @Param        year         query  int     false  "Año"
// @Param        month        query  int     false  "Mes 1-12"
// @Param        start_date   query  string  false  "YYYY-MM-DD"
// @Param        end_date     query  string  false  "YYYY-MM-DD"
// @Param        product_id   query  string  false  "UUID de producto"
// @Param        seller_id    query  string  false  "UUID de vendedor (solo admin)"
// @Success      200  {object}  dto.LocationReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/statistics/locations [get]
func (h *StatisticsHandler) GetLocations(c *fiber.Ctx) error {
	return h.serveStatistics(c, h.svc.Locations)
}

// GetProducts godoc
// @Summary      Ventas por producto
// @Description  Desglose por producto con categoría, unidad y precio unitario promedio, ordenado por ingresos.
// @Tags         statistics
// @Security     Bearer
// @Produce      json
// @Param        period_type  query  string  false  "custom | monthly | yearly"
// @Param        year         query  int     false  "Año"
// @Param        month        query  int     false  "Mes 1-12"
// @Param        start_date   query  string  false  "YYYY-MM-DD"
// @Param        end_date     query  string  false  "YYYY-MM-DD"
// @Param        location_id  query  string  false  "UUID de lokasi"
// @Param        seller_id    query  string  false  "UUID de vendedor (solo admin)"
// @Success      200  {object}  dto.ProductReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/statistics/products [get]
func (h *StatisticsHandler) GetProducts(c *fiber.Ctx) error {
	return h.serveStatistics(c, h.svc.Products)
}

// GetPeriods godoc
// @Summary      Ventas por mes o por año
// @Description  Serie cronológica; granularity monthly (default) o yearly.
// @Tags         statistics
// @Security     Bearer
// @Produce      json
// @Param        period_type  query  string  false  "custom | monthly | yearly"
// @Param        year         query  int     false  "Año"
// @Param        start_date   query  string  false  "YYYY-MM-DD"
// @Param        end_date     query  string  false  "YYYY-MM-DD"
// @Param        granularity  query  string  false  "monthly | yearly"
// @Success      200  {object}  dto.PeriodReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/statistics/periods [get]
func (h *StatisticsHandler) GetPeriods(c *fiber.Ctx) error {
	return h.serveStatistics(c, h.svc.Periods)
}

// GetDashboard godoc
// @Summary      Dashboard: mes actual contra mes anterior
// @Tags         statistics
// @Security     Bearer
// @Produce      json
// @Param        lang  query  string  false  "id | en | es"
// @Success      200  {object}  dto.DashboardDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/statistics/dashboard [get]
func (h *StatisticsHandler) GetDashboard(c *fiber.Ctx) error {
	res, err := h.svc.Dashboard(c.UserContext(), ActorFrom(c), h.lang(c, c.Query("lang")))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeResult(c, res)
}

// GetSalesChart godoc
// @Summary      Gráfico mensual de ventas
// @Description  Ingresos y transacciones por mes del año; los meses sin ventas aparecen en cero.
// @Tags         charts
// @Security     Bearer
// @Produce      json
// @Param        year         query  int     false  "Año (default: año actual)"
// @Param        month_start  query  int     false  "1-12 (default 1)"
// @Param        month_end    query  int     false  "1-12 (default 12)"
// @Param        seller_id    query  string  false  "UUID de vendedor (solo admin)"
// @Success      200  {object}  dto.SalesChartDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/charts/sales [get]
func (h *StatisticsHandler) GetSalesChart(c *fiber.Ctx) error {
	return h.serveChart(c, h.svc.SalesChart)
}

// GetSellerChart godoc
// @Summary      Gráfico mensual por vendedor
// @Tags         charts
// @Security     Bearer
// @Produce      json
// @Param        year         query  int  false  "Año"
// @Param        month_start  query  int  false  "1-12"
// @Param        month_end    query  int  false  "1-12"
// @Success      200  {object}  dto.SellerChartDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/charts/sales/sellers [get]
func (h *StatisticsHandler) GetSellerChart(c *fiber.Ctx) error {
	return h.serveChart(c, h.svc.SellerChart)
}

// GetChartSummary godoc
// @Summary      Totales del rango del gráfico
// @Description  Ingresos, transacciones, unidades y vendedores activos.
// @Tags         charts
// @Security     Bearer
// @Produce      json
// @Param        year         query  int     false  "Año"
// @Param        month_start  query  int     false  "1-12"
// @Param        month_end    query  int     false  "1-12"
// @Param        seller_id    query  string  false  "UUID de vendedor (solo admin)"
// @Success      200  {object}  dto.ChartSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/charts/summary [get]
func (h *StatisticsHandler) GetChartSummary(c *fiber.Ctx) error {
	return h.serveChart(c, h.svc.ChartSummary)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (h *StatisticsHandler) serveStatistics(c *fiber.Ctx, op statisticsOp) error {
	var q dto.StatisticsQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos",
		})
	}
	q.Lang = h.lang(c, q.Lang)
	res, err := op(c.UserContext(), ActorFrom(c), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeResult(c, res)
}

func (h *StatisticsHandler) serveChart(c *fiber.Ctx, op func(context.Context, entity.Actor, dto.ChartQuery) (statistics.Result, error)) error {
	var q dto.ChartQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos",
		})
	}
	q.Lang = h.lang(c, q.Lang)
	res, err := op(c.UserContext(), ActorFrom(c), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeResult(c, res)
}

// lang normaliza ?lang= y Accept-Language a un idioma soportado; así la clave de caché es estable.
func (h *StatisticsHandler) lang(c *fiber.Ctx, explicit string) string {
	return period.MatchLocale(h.defaultLocale, explicit, c.Get(fiber.HeaderAcceptLanguage)).String()
}

func writeResult(c *fiber.Ctx, res statistics.Result) error {
	if res.Hit {
		c.Set(HeaderCache, "HIT")
	} else {
		c.Set(HeaderCache, "MISS")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(res.Body)
}
