package statistics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/umkm-stats-api/internal/application/dto"
	"github.com/jhoicas/umkm-stats-api/internal/application/ports"
	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
	"github.com/jhoicas/umkm-stats-api/pkg/logger"
)

// DefaultCacheTTL vigencia de una respuesta memorizada.
const DefaultCacheTTL = 5 * time.Minute

// Operaciones (parte de la clave de caché).
const (
	OpSummary      = "summary"
	OpLocations    = "locations"
	OpProducts     = "products"
	OpPeriods      = "periods"
	OpDashboard    = "dashboard"
	OpSalesChart   = "chart_sales"
	OpSellerChart  = "chart_sellers"
	OpChartSummary = "chart_summary"
)

// Result payload JSON listo para escribir y si vino de la caché.
type Result struct {
	Body []byte
	Hit  bool
}

// CachedStatistics envuelve StatisticsUseCase y memoriza el JSON de cada respuesta por
// (actor, operación, parámetros). Misses concurrentes de la misma clave se calculan una sola vez.
// cache nil desactiva la memorización.
type CachedStatistics struct {
	uc    *StatisticsUseCase
	cache ports.ResultCache
	ttl   time.Duration
	log   *logger.Logger
	group singleflight.Group
}

// NewCachedStatistics construye la capa de caché. ttl <= 0 usa DefaultCacheTTL.
func NewCachedStatistics(uc *StatisticsUseCase, cache ports.ResultCache, ttl time.Duration, log *logger.Logger) *CachedStatistics {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStatistics{uc: uc, cache: cache, ttl: ttl, log: log}
}

// ── Operaciones ───────────────────────────────────────────────────────────────

func (c *CachedStatistics) Summary(ctx context.Context, actor entity.Actor, q dto.StatisticsQuery) (Result, error) {
	return c.serve(ctx, actor, OpSummary, statisticsParams(q), func(ctx context.Context) (any, error) {
		return c.uc.GetSummary(ctx, actor, q)
	})
}

func (c *CachedStatistics) Locations(ctx context.Context, actor entity.Actor, q dto.StatisticsQuery) (Result, error) {
	return c.serve(ctx, actor, OpLocations, statisticsParams(q), func(ctx context.Context) (any, error) {
		return c.uc.GetLocationBreakdown(ctx, actor, q)
	})
}

func (c *CachedStatistics) Products(ctx context.Context, actor entity.Actor, q dto.StatisticsQuery) (Result, error) {
	return c.serve(ctx, actor, OpProducts, statisticsParams(q), func(ctx context.Context) (any, error) {
		return c.uc.GetProductBreakdown(ctx, actor, q)
	})
}

func (c *CachedStatistics) Periods(ctx context.Context, actor entity.Actor, q dto.StatisticsQuery) (Result, error) {
	return c.serve(ctx, actor, OpPeriods, statisticsParams(q), func(ctx context.Context) (any, error) {
		return c.uc.GetPeriodBreakdown(ctx, actor, q)
	})
}

// Dashboard la clave incluye el mes actual para que el cambio de mes no sirva datos del mes anterior.
func (c *CachedStatistics) Dashboard(ctx context.Context, actor entity.Actor, lang string) (Result, error) {
	params := map[string]string{
		"lang":  lang,
		"month": c.uc.now().Format("2006-01"),
	}
	return c.serve(ctx, actor, OpDashboard, params, func(ctx context.Context) (any, error) {
		return c.uc.GetDashboard(ctx, actor, lang)
	})
}

func (c *CachedStatistics) SalesChart(ctx context.Context, actor entity.Actor, q dto.ChartQuery) (Result, error) {
	return c.serve(ctx, actor, OpSalesChart, c.chartParams(q), func(ctx context.Context) (any, error) {
		return c.uc.GetSalesChart(ctx, actor, q)
	})
}

func (c *CachedStatistics) SellerChart(ctx context.Context, actor entity.Actor, q dto.ChartQuery) (Result, error) {
	return c.serve(ctx, actor, OpSellerChart, c.chartParams(q), func(ctx context.Context) (any, error) {
		return c.uc.GetSellerChart(ctx, actor, q)
	})
}

func (c *CachedStatistics) ChartSummary(ctx context.Context, actor entity.Actor, q dto.ChartQuery) (Result, error) {
	return c.serve(ctx, actor, OpChartSummary, c.chartParams(q), func(ctx context.Context) (any, error) {
		return c.uc.GetChartSummary(ctx, actor, q)
	})
}

// ── Núcleo ────────────────────────────────────────────────────────────────────

// serve aplica la política antes de consultar la caché; los errores de caché se registran y se ignoran.
func (c *CachedStatistics) serve(
	ctx context.Context,
	actor entity.Actor,
	op string,
	params map[string]string,
	compute func(context.Context) (any, error),
) (Result, error) {
	if err := authorize(actor); err != nil {
		return Result{}, err
	}
	if c.cache == nil {
		body, err := encode(ctx, compute)
		return Result{Body: body}, err
	}

	key := CacheKey(actor, op, params)
	if body, ok, err := c.cache.Get(ctx, key); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("statistics: lectura de caché fallida")
	} else if ok {
		c.log.Debug().Str("op", op).Str("user_id", actor.UserID).Msg("statistics: cache hit")
		return Result{Body: body, Hit: true}, nil
	}

	// El cálculo compartido no depende de la cancelación de quien lo inició; load lo acota con queryTimeout.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		body, err := encode(flightCtx, compute)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(flightCtx, key, body, c.ttl); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("statistics: escritura de caché fallida")
		}
		return body, nil
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Result{}, res.Err
		}
		c.log.Debug().Str("op", op).Str("user_id", actor.UserID).Msg("statistics: cache miss")
		return Result{Body: res.Val.([]byte)}, nil
	}
}

func encode(ctx context.Context, compute func(context.Context) (any, error)) ([]byte, error) {
	v, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("statistics: serializar respuesta: %w", err)
	}
	return body, nil
}

// ── Claves ────────────────────────────────────────────────────────────────────

const cacheNamespace = "stats"

// SellerPrefix prefijo de todas las entradas de un vendedor.
func SellerPrefix(sellerID string) string {
	return cacheNamespace + ":seller:" + sellerID + ":"
}

// AdminPrefix prefijo de todas las entradas de administradores.
func AdminPrefix() string {
	return cacheNamespace + ":admin:"
}

// CacheKey "stats:{seller|admin}:{userID}:{sha256(userID, op, parámetros ordenados)}".
// Los parámetros vacíos no forman parte de la clave.
func CacheKey(actor entity.Actor, op string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(actor.UserID)
	b.WriteByte('|')
	b.WriteString(op)
	for _, k := range names {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	sum := sha256.Sum256([]byte(b.String()))

	prefix := SellerPrefix(actor.UserID)
	if actor.IsAdmin() {
		prefix = AdminPrefix() + actor.UserID + ":"
	}
	return prefix + hex.EncodeToString(sum[:])
}

func statisticsParams(q dto.StatisticsQuery) map[string]string {
	return map[string]string{
		"period_type": q.PeriodType,
		"year":        itoa(q.Year),
		"month":       itoa(q.Month),
		"start_date":  q.StartDate,
		"end_date":    q.EndDate,
		"location_id": strings.ToLower(q.LocationID),
		"product_id":  strings.ToLower(q.ProductID),
		"seller_id":   strings.ToLower(q.SellerID),
		"granularity": q.Granularity,
		"lang":        q.Lang,
	}
}

// chartParams el año por defecto depende del reloj; se fija en la clave para no cruzar años.
func (c *CachedStatistics) chartParams(q dto.ChartQuery) map[string]string {
	year := q.Year
	if year == 0 {
		year = c.uc.now().Year()
	}
	return map[string]string{
		"year":        itoa(year),
		"month_start": itoa(q.MonthStart),
		"month_end":   itoa(q.MonthEnd),
		"seller_id":   strings.ToLower(q.SellerID),
		"lang":        q.Lang,
	}
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
