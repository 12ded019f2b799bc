package statistics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/umkm-stats-api/internal/application/dto"
	"github.com/jhoicas/umkm-stats-api/internal/domain"
	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
	"github.com/jhoicas/umkm-stats-api/internal/domain/period"
	"github.com/jhoicas/umkm-stats-api/internal/domain/repository"
	"github.com/jhoicas/umkm-stats-api/internal/domain/stats"
)

// chartRange año y rango de meses validados de un gráfico.
type chartRange struct {
	year       int
	monthStart int
	monthEnd   int
	interval   period.Interval
}

// prepareChart aplica la política, completa los valores por defecto (año actual, meses 1-12) y valida.
func (uc *StatisticsUseCase) prepareChart(actor entity.Actor, q dto.ChartQuery) (chartRange, repository.SalesFilter, error) {
	if err := authorize(actor); err != nil {
		return chartRange{}, repository.SalesFilter{}, err
	}
	r := chartRange{year: q.Year, monthStart: q.MonthStart, monthEnd: q.MonthEnd}
	if r.year == 0 {
		r.year = uc.now().Year()
	}
	if r.monthStart == 0 {
		r.monthStart = 1
	}
	if r.monthEnd == 0 {
		r.monthEnd = 12
	}
	if _, err := uc.resolver.Resolve(period.Request{Kind: period.KindYearly, Year: r.year}); err != nil {
		return chartRange{}, repository.SalesFilter{}, err
	}
	if r.monthStart < 1 || r.monthStart > 12 || r.monthEnd < 1 || r.monthEnd > 12 {
		return chartRange{}, repository.SalesFilter{}, fmt.Errorf("%w: month_start y month_end deben estar entre 1 y 12", domain.ErrInvalidPeriod)
	}
	if r.monthStart > r.monthEnd {
		return chartRange{}, repository.SalesFilter{}, fmt.Errorf("%w: month_start no puede ser mayor que month_end", domain.ErrInvalidPeriod)
	}
	r.interval = period.Interval{
		Start: period.MonthInterval(r.year, time.Month(r.monthStart)).Start,
		End:   period.MonthInterval(r.year, time.Month(r.monthEnd)).End,
	}

	scope := Scope{SellerID: q.SellerID}
	if err := scope.Validate(); err != nil {
		return chartRange{}, repository.SalesFilter{}, err
	}
	return r, BuildFilter(actor, r.interval, scope), nil
}

// GetSalesChart serie mensual de ingresos y transacciones; los meses sin ventas aparecen en cero.
func (uc *StatisticsUseCase) GetSalesChart(ctx context.Context, actor entity.Actor, q dto.ChartQuery) (*dto.SalesChartDTO, error) {
	r, f, err := uc.prepareChart(actor, q)
	if err != nil {
		return nil, err
	}
	lines, err := uc.load(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("statistics.GetSalesChart: %w", err)
	}
	loc := uc.locale(q.Lang)

	byMonth := make(map[string]stats.Group)
	for _, g := range stats.GroupBy(lines, stats.ByBucket(period.GranularityMonthly), decimal.Zero, nil) {
		byMonth[g.Key] = g
	}

	points := make([]dto.SalesChartPointDTO, 0, r.monthEnd-r.monthStart+1)
	for m := r.monthStart; m <= r.monthEnd; m++ {
		start := period.MonthInterval(r.year, time.Month(m)).Start
		point := dto.SalesChartPointDTO{
			Year:      r.year,
			Month:     m,
			MonthName: loc.MonthName(time.Month(m)),
			Revenue:   decimal.Zero,
		}
		if g, ok := byMonth[period.BucketKey(start, period.GranularityMonthly)]; ok {
			point.Revenue = g.Revenue
			point.TransactionCount = g.TransactionCount
		}
		points = append(points, point)
	}
	return &dto.SalesChartDTO{Year: r.year, MonthStart: r.monthStart, MonthEnd: r.monthEnd, Points: points}, nil
}

// GetSellerChart filas vendedor × mes con ventas, ordenadas por nombre de vendedor y luego por mes.
// Un UMKM solo ve sus propias filas.
func (uc *StatisticsUseCase) GetSellerChart(ctx context.Context, actor entity.Actor, q dto.ChartQuery) (*dto.SellerChartDTO, error) {
	r, f, err := uc.prepareChart(actor, q)
	if err != nil {
		return nil, err
	}
	lines, err := uc.load(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("statistics.GetSellerChart: %w", err)
	}
	loc := uc.locale(q.Lang)

	groups := stats.GroupBy(lines, stats.BySellerMonth, decimal.Zero, nil)
	stats.SortSellerRows(groups, func(g stats.Group) string { return g.Lines[0].SellerName })

	rows := make([]dto.SellerChartRowDTO, 0, len(groups))
	for _, g := range groups {
		sellerID, bucket, _ := strings.Cut(g.Key, stats.SellerMonthSep)
		t, _ := stats.BucketTime(bucket)
		rows = append(rows, dto.SellerChartRowDTO{
			SellerID:         sellerID,
			SellerName:       g.Lines[0].SellerName,
			Year:             t.Year(),
			Month:            int(t.Month()),
			MonthName:        loc.MonthName(t.Month()),
			Revenue:          g.Revenue,
			TransactionCount: g.TransactionCount,
		})
	}
	return &dto.SellerChartDTO{Year: r.year, MonthStart: r.monthStart, MonthEnd: r.monthEnd, Rows: rows}, nil
}

// GetChartSummary totales del rango del gráfico y número de vendedores con al menos una venta.
func (uc *StatisticsUseCase) GetChartSummary(ctx context.Context, actor entity.Actor, q dto.ChartQuery) (*dto.ChartSummaryDTO, error) {
	r, f, err := uc.prepareChart(actor, q)
	if err != nil {
		return nil, err
	}
	lines, err := uc.load(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("statistics.GetChartSummary: %w", err)
	}
	total := stats.Summarize(lines)
	return &dto.ChartSummaryDTO{
		Year:             r.year,
		MonthStart:       r.monthStart,
		MonthEnd:         r.monthEnd,
		Revenue:          total.Revenue,
		TransactionCount: total.TransactionCount,
		UnitsSold:        total.UnitsSold,
		ActiveSellers:    stats.DistinctSellers(lines),
	}, nil
}
