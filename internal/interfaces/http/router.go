package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/umkm-stats-api/internal/application/dto"
	"github.com/jhoicas/umkm-stats-api/internal/application/statistics"
	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
	"github.com/jhoicas/umkm-stats-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Statistics    *statistics.CachedStatistics
	Limiter       *RateLimiter // nil = sin límite
	JWTSecret     string
	JWTIssuer     string
	DefaultLocale string
	ServiceName   string
	Log           *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Service: deps.ServiceName})
	})

	// Rutas protegidas (Bearer Token + rol con acceso a estadísticas)
	protected := app.Group("/api",
		AuthMiddleware(deps.JWTSecret, deps.JWTIssuer),
		RequireRole(entity.RoleAdmin, entity.RoleSeller),
	)
	if deps.Limiter != nil {
		protected.Use(RateLimit(deps.Limiter))
	}

	h := NewStatisticsHandler(deps.Statistics, deps.DefaultLocale, deps.Log)

	stats := protected.Group("/statistics")
	stats.Get("/summary", h.GetSummary)
	stats.Get("/locations", h.GetLocations)
	stats.Get("/products", h.GetProducts)
	stats.Get("/periods", h.GetPeriods)
	stats.Get("/dashboard", h.GetDashboard)

	charts := protected.Group("/charts")
	charts.Get("/sales", h.GetSalesChart)
	charts.Get("/sales/sellers", h.GetSellerChart)
	charts.Get("/summary", h.GetChartSummary)
}
