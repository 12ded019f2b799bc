package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/jhoicas/umkm-stats-api/internal/application/ports"
	"github.com/jhoicas/umkm-stats-api/internal/application/statistics"
	"github.com/jhoicas/umkm-stats-api/internal/domain/period"
	"github.com/jhoicas/umkm-stats-api/internal/infrastructure/cache"
	"github.com/jhoicas/umkm-stats-api/internal/infrastructure/postgres"
	"github.com/jhoicas/umkm-stats-api/internal/infrastructure/queue"
	httpRouter "github.com/jhoicas/umkm-stats-api/internal/interfaces/http"
	"github.com/jhoicas/umkm-stats-api/pkg/config"
	"github.com/jhoicas/umkm-stats-api/pkg/logger"
)

const cacheSweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("timezone", cfg.App.Timezone).
		Str("cache", cfg.Stats.CacheDriver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	salesRepo := postgres.NewSalesRepository(pool)

	resultCache, closeCache := buildCache(ctx, cfg, log)
	defer closeCache()

	statsUC := statistics.NewStatisticsUseCase(salesRepo,
		period.NewResolver(cfg.Stats.MinYear, cfg.Stats.MaxYear),
		statistics.WithQueryTimeout(cfg.DB.QueryTimeout),
		statistics.WithLocation(cfg.App.Location()),
		statistics.WithDefaultLocale(cfg.App.Locale),
	)
	statsSvc := statistics.NewCachedStatistics(statsUC, resultCache, cfg.Stats.CacheTTL, log.With("component", "statistics"))

	// Invalidación por eventos de venta (opcional).
	if cfg.RabbitMQ.URL != "" && resultCache != nil {
		startInvalidationConsumer(ctx, cfg, resultCache, log.With("component", "queue"))
	}

	var limiter *httpRouter.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = httpRouter.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.RunCleanup(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(httpRouter.RequestID())
	app.Use(httpRouter.RequestLogger(log.With("component", "http")))
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (solo si existe el archivo generado)
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "UMKM Statistics API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Statistics:    statsSvc,
		Limiter:       limiter,
		JWTSecret:     cfg.JWT.Secret,
		JWTIssuer:     cfg.JWT.Issuer,
		DefaultLocale: cfg.App.Locale,
		ServiceName:   cfg.App.Name,
		Log:           log.With("component", "http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// buildCache elige el backend de STATS_CACHE_DRIVER. Si Redis no responde se degrada a memoria.
func buildCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.ResultCache, func()) {
	switch cfg.Stats.CacheDriver {
	case config.CacheNone:
		log.Warn().Msg("caché de estadísticas deshabilitada")
		return nil, func() {}
	case config.CacheRedis:
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedisFromURL(pingCtx, cfg.Redis.URL)
		if err == nil {
			return rc, func() { _ = rc.Close() }
		}
		log.Error().Err(err).Msg("redis no disponible, se usa caché en memoria")
	}
	mem := cache.NewMemory()
	go mem.RunSweeper(ctx, cacheSweepInterval)
	return mem, func() {}
}

func startInvalidationConsumer(ctx context.Context, cfg *config.Config, c ports.ResultCache, log *logger.Logger) {
	client, err := queue.New(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq no disponible, la caché vence solo por TTL")
		return
	}
	invalidator := statistics.NewInvalidator(c, log)
	topology := salesTopology(cfg, c)

	go func() {
		defer client.Close()
		err := client.ConsumeSales(ctx, topology, invalidator.HandleSaleEvent, log)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("consumidor de ventas detenido")
		}
	}()
}

// salesTopology con una caché local cada réplica necesita su propia cola para ver todos los eventos;
// con Redis basta que una réplica borre las entradas compartidas.
func salesTopology(cfg *config.Config, c ports.ResultCache) queue.SalesTopology {
	t := queue.SalesTopology{Exchange: cfg.RabbitMQ.SalesExchange, Queue: cfg.RabbitMQ.SalesQueue}
	if _, shared := c.(*cache.Redis); !shared {
		t.InstanceID = uuid.NewString()
	}
	return t
}
