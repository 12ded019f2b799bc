package statistics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/umkm-stats-api/internal/application/dto"
	"github.com/jhoicas/umkm-stats-api/internal/domain"
	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
	"github.com/jhoicas/umkm-stats-api/internal/domain/period"
	"github.com/jhoicas/umkm-stats-api/internal/domain/repository"
	"github.com/jhoicas/umkm-stats-api/internal/domain/stats"
)

const defaultQueryTimeout = 10 * time.Second

// StatisticsUseCase calcula estadísticas de ventas a partir de un único conjunto de ventas por consulta:
// el resumen y todos los desgloses de una respuesta salen de las mismas líneas.
type StatisticsUseCase struct {
	salesRepo     repository.SalesRepository
	resolver      *period.Resolver
	queryTimeout  time.Duration
	clock         func() time.Time
	location      *time.Location
	defaultLocale string
}

// Option configura el caso de uso.
type Option func(*StatisticsUseCase)

// WithQueryTimeout límite de cada consulta al repositorio.
func WithQueryTimeout(d time.Duration) Option {
	return func(uc *StatisticsUseCase) {
		if d > 0 {
			uc.queryTimeout = d
		}
	}
}

// WithClock reloj para el dashboard y los gráficos (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *StatisticsUseCase) { uc.clock = now }
}

// WithLocation zona horaria que define "el mes actual".
func WithLocation(loc *time.Location) Option {
	return func(uc *StatisticsUseCase) {
		if loc != nil {
			uc.location = loc
		}
	}
}

// WithDefaultLocale idioma de las etiquetas cuando el cliente no indica uno.
func WithDefaultLocale(lang string) Option {
	return func(uc *StatisticsUseCase) { uc.defaultLocale = lang }
}

// NewStatisticsUseCase construye el caso de uso.
func NewStatisticsUseCase(salesRepo repository.SalesRepository, resolver *period.Resolver, opts ...Option) *StatisticsUseCase {
	uc := &StatisticsUseCase{
		salesRepo:     salesRepo,
		resolver:      resolver,
		queryTimeout:  defaultQueryTimeout,
		clock:         time.Now,
		location:      time.UTC,
		defaultLocale: "id",
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// query consulta ya validada: periodo resuelto, filtro combinado e idioma.
type query struct {
	spec   period.Spec
	filter repository.SalesFilter
	locale period.Locale
}

// prepare aplica la política de acceso, resuelve el periodo y arma el filtro.
// Cualquier error aquí ocurre antes de tocar el repositorio.
func (uc *StatisticsUseCase) prepare(actor entity.Actor, q dto.StatisticsQuery) (query, error) {
	if err := authorize(actor); err != nil {
		return query{}, err
	}
	start, err := period.ParseDate(q.StartDate)
	if err != nil {
		return query{}, err
	}
	end, err := period.ParseDate(q.EndDate)
	if err != nil {
		return query{}, err
	}
	spec, err := uc.resolver.Resolve(period.Request{
		Kind:      period.Kind(q.PeriodType),
		Year:      q.Year,
		Month:     q.Month,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return query{}, err
	}
	scope := Scope{SellerID: q.SellerID, LocationID: q.LocationID, ProductID: q.ProductID}
	if err := scope.Validate(); err != nil {
		return query{}, err
	}
	return query{
		spec:   spec,
		filter: BuildFilter(actor, spec.Interval, scope),
		locale: uc.locale(q.Lang),
	}, nil
}

func (uc *StatisticsUseCase) locale(lang string) period.Locale {
	return period.MatchLocale(uc.defaultLocale, lang)
}

// load ejecuta la consulta al repositorio bajo el timeout configurado.
func (uc *StatisticsUseCase) load(ctx context.Context, f repository.SalesFilter) ([]entity.SaleLine, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
	defer cancel()
	return uc.salesRepo.ListSaleLines(ctx, f)
}

func (uc *StatisticsUseCase) now() time.Time {
	return uc.clock().In(uc.location)
}

// GetSummary métricas del periodo con sus desgloses por lokasi, producto y bucket de tiempo.
// El desglose temporal es anual para periodos anuales y mensual en otro caso.
func (uc *StatisticsUseCase) GetSummary(ctx context.Context, actor entity.Actor, q dto.StatisticsQuery) (*dto.SummaryDTO, error) {
	qr, err := uc.prepare(actor, q)
	if err != nil {
		return nil, err
	}
	lines, err := uc.load(ctx, qr.filter)
	if err != nil {
		return nil, fmt.Errorf("statistics.GetSummary: %w", err)
	}

	total := stats.Summarize(lines)
	gran := qr.spec.Granularity()
	days := qr.spec.Days()

	return &dto.SummaryDTO{
		Period:                toPeriodDTO(qr.spec, qr.locale),
		Filters:               toFiltersDTO(qr.filter),
		Totals:                toAggregateDTO(total),
		AvgRevenuePerDay:      stats.PerDay(total.Revenue, days),
		AvgTransactionsPerDay: stats.PerDay(decimal.NewFromInt(total.TransactionCount), days),
		Granularity:           string(gran),
		Breakdown: dto.SummaryBreakdownDTO{
			ByLocation: toLocationEntries(stats.GroupBy(lines, stats.ByLocation, total.Revenue, stats.ByRevenueDesc)),
			ByProduct:  toProductEntries(stats.GroupBy(lines, stats.ByProduct, total.Revenue, stats.ByRevenueDesc)),
			ByPeriod:   toBucketEntries(stats.GroupBy(lines, stats.ByBucket(gran), total.Revenue, stats.ByKeyAsc), gran, qr.locale),
		},
	}, nil
}

// GetLocationBreakdown desglose por lokasi, mayor ingreso primero. Las ventas sin lokasi solo cuentan en los totales.
func (uc *StatisticsUseCase) GetLocationBreakdown(ctx context.Context, actor entity.Actor, q dto.StatisticsQuery) (*dto.LocationReportDTO, error) {
	qr, err := uc.prepare(actor, q)
	if err != nil {
		return nil, err
	}
	lines, err := uc.load(ctx, qr.filter)
	if err != nil {
		return nil, fmt.Errorf("statistics.GetLocationBreakdown: %w", err)
	}
	total := stats.Summarize(lines)
	return &dto.LocationReportDTO{
		Period:    toPeriodDTO(qr.spec, qr.locale),
		Filters:   toFiltersDTO(qr.filter),
		Totals:    toAggregateDTO(total),
		Locations: toLocationEntries(stats.GroupBy(lines, stats.ByLocation, total.Revenue, stats.ByRevenueDesc)),
	}, nil
}

// GetProductBreakdown desglose por producto, mayor ingreso primero. Productos sin ventas no aparecen.
func (uc *StatisticsUseCase) GetProductBreakdown(ctx context.Context, actor entity.Actor, q dto.StatisticsQuery) (*dto.ProductReportDTO, error) {
	qr, err := uc.prepare(actor, q)
	if err != nil {
		return nil, err
	}
	lines, err := uc.load(ctx, qr.filter)
	if err != nil {
		return nil, fmt.Errorf("statistics.GetProductBreakdown: %w", err)
	}
	total := stats.Summarize(lines)
	return &dto.ProductReportDTO{
		Period:   toPeriodDTO(qr.spec, qr.locale),
		Filters:  toFiltersDTO(qr.filter),
		Totals:   toAggregateDTO(total),
		Products: toProductEntries(stats.GroupBy(lines, stats.ByProduct, total.Revenue, stats.ByRevenueDesc)),
	}, nil
}

// GetPeriodBreakdown línea de tiempo en orden cronológico. Sin granularity explícita usa la natural del periodo.
func (uc *StatisticsUseCase) GetPeriodBreakdown(ctx context.Context, actor entity.Actor, q dto.StatisticsQuery) (*dto.PeriodReportDTO, error) {
	qr, err := uc.prepare(actor, q)
	if err != nil {
		return nil, err
	}
	gran, err := parseGranularity(q.Granularity, qr.spec)
	if err != nil {
		return nil, err
	}
	lines, err := uc.load(ctx, qr.filter)
	if err != nil {
		return nil, fmt.Errorf("statistics.GetPeriodBreakdown: %w", err)
	}
	total := stats.Summarize(lines)
	return &dto.PeriodReportDTO{
		Period:      toPeriodDTO(qr.spec, qr.locale),
		Filters:     toFiltersDTO(qr.filter),
		Granularity: string(gran),
		Totals:      toAggregateDTO(total),
		Buckets:     toBucketEntries(stats.GroupBy(lines, stats.ByBucket(gran), total.Revenue, stats.ByKeyAsc), gran, qr.locale),
	}, nil
}

func parseGranularity(s string, spec period.Spec) (period.Granularity, error) {
	switch period.Granularity(s) {
	case "":
		return spec.Granularity(), nil
	case period.GranularityMonthly, period.GranularityYearly:
		return period.Granularity(s), nil
	default:
		return "", fmt.Errorf("%w: granularity desconocida: %q", domain.ErrInvalidPeriod, s)
	}
}
