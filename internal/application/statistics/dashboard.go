package statistics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/umkm-stats-api/internal/application/dto"
	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
	"github.com/jhoicas/umkm-stats-api/internal/domain/period"
	"github.com/jhoicas/umkm-stats-api/internal/domain/stats"
)

const dashboardTop = 3 // productos y lokasi en el widget del dashboard

// GetDashboard compara el mes calendario actual (en la zona horaria configurada) con el anterior.
//
// Dos consultas en paralelo:
//  1. ventas del mes actual   → métricas, top productos, top lokasi
//  2. ventas del mes anterior → métricas para las variaciones
func (uc *StatisticsUseCase) GetDashboard(ctx context.Context, actor entity.Actor, lang string) (*dto.DashboardDTO, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	spec := period.ForMonth(uc.now())
	loc := uc.locale(lang)

	var current, previous []entity.SaleLine
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lines, err := uc.load(gctx, BuildFilter(actor, spec.Interval, Scope{}))
		if err != nil {
			return fmt.Errorf("mes actual: %w", err)
		}
		current = lines
		return nil
	})
	g.Go(func() error {
		lines, err := uc.load(gctx, BuildFilter(actor, spec.Previous, Scope{}))
		if err != nil {
			return fmt.Errorf("mes anterior: %w", err)
		}
		previous = lines
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("statistics.GetDashboard: %w", err)
	}

	cur := stats.Summarize(current)
	prev := stats.Summarize(previous)

	products := toProductEntries(stats.GroupBy(current, stats.ByProduct, cur.Revenue, stats.ByRevenueDesc))
	locations := toLocationEntries(stats.GroupBy(current, stats.ByLocation, cur.Revenue, stats.ByRevenueDesc))

	return &dto.DashboardDTO{
		Month:              period.BucketKey(spec.Start, period.GranularityMonthly),
		MonthLabel:         loc.MonthLabel(spec.Start.Year(), spec.Start.Month()),
		PreviousMonth:      period.BucketKey(spec.Previous.Start, period.GranularityMonthly),
		PreviousMonthLabel: loc.MonthLabel(spec.Previous.Start.Year(), spec.Previous.Start.Month()),
		Current:            toAggregateDTO(cur),
		Previous:           toAggregateDTO(prev),
		Deltas: dto.DeltasDTO{
			RevenuePercent:      stats.Delta(cur.Revenue, prev.Revenue),
			TransactionsPercent: stats.DeltaCount(cur.TransactionCount, prev.TransactionCount),
			UnitsPercent:        stats.DeltaCount(cur.UnitsSold, prev.UnitsSold),
			GrossProfitPercent:  stats.Delta(cur.GrossProfit, prev.GrossProfit),
		},
		TopProducts:  topN(products, dashboardTop),
		TopLocations: topN(locations, dashboardTop),
	}, nil
}
