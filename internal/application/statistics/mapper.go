package statistics

import (
	"github.com/jhoicas/umkm-stats-api/internal/application/dto"
	"github.com/jhoicas/umkm-stats-api/internal/domain/period"
	"github.com/jhoicas/umkm-stats-api/internal/domain/repository"
	"github.com/jhoicas/umkm-stats-api/internal/domain/stats"
)

// ── stats → DTO ───────────────────────────────────────────────────────────────

func toAggregateDTO(a stats.Aggregate) dto.AggregateDTO {
	return dto.AggregateDTO{
		TransactionCount: a.TransactionCount,
		UnitsSold:        a.UnitsSold,
		Revenue:          a.Revenue,
		Cost:             a.Cost,
		GrossProfit:      a.GrossProfit,
		MarginPercent:    a.MarginPercent,
	}
}

func toFiltersDTO(f repository.SalesFilter) dto.FiltersDTO {
	return dto.FiltersDTO{SellerIDs: f.SellerIDs, LocationID: f.LocationID, ProductID: f.ProductID}
}

func toPeriodDTO(spec period.Spec, loc period.Locale) dto.PeriodDTO {
	out := dto.PeriodDTO{
		Type:      string(spec.Kind),
		Year:      spec.Year,
		Month:     spec.Month,
		StartDate: spec.Start.Format(period.DateLayout),
		EndDate:   spec.End.Format(period.DateLayout),
		Days:      spec.Days(),
	}
	switch {
	case spec.Kind == period.KindCustom:
		out.Label = out.StartDate + " s/d " + out.EndDate
	case spec.Month != 0:
		out.Label = loc.MonthLabel(spec.Year, spec.Start.Month())
	default:
		out.Label = spec.Start.Format("2006")
	}
	return out
}

func entry(g stats.Group, label string) dto.BreakdownEntryDTO {
	return dto.BreakdownEntryDTO{
		Key:                 g.Key,
		Label:               label,
		Aggregate:           toAggregateDTO(g.Aggregate),
		ContributionPercent: g.ContributionPercent,
	}
}

func toLocationEntries(groups []stats.Group) []dto.LocationBreakdownDTO {
	out := make([]dto.LocationBreakdownDTO, 0, len(groups))
	for _, g := range groups {
		l := g.Lines[0].Location
		item := dto.LocationBreakdownDTO{
			BreakdownEntryDTO: entry(g, l.Name),
			SellerID:          l.SellerID,
			Address:           l.Address,
			Category:          l.Category,
			District:          l.District,
			Regency:           l.Regency,
			Province:          l.Province,
			DistinctProducts:  stats.DistinctProducts(g.Lines),
		}
		if best, ok := stats.TopProduct(g.Lines); ok {
			item.BestSellingProduct = &dto.BestSellerDTO{
				ProductID: best.ProductID,
				Name:      best.Name,
				Quantity:  best.Quantity,
			}
		}
		out = append(out, item)
	}
	return out
}

func toProductEntries(groups []stats.Group) []dto.ProductBreakdownDTO {
	out := make([]dto.ProductBreakdownDTO, 0, len(groups))
	for _, g := range groups {
		p := g.Lines[0].Product
		out = append(out, dto.ProductBreakdownDTO{
			BreakdownEntryDTO: entry(g, p.Name),
			SellerID:          p.SellerID,
			Category:          p.CategoryName,
			Unit:              p.Unit,
			AvgUnitPrice:      g.AvgUnitPrice(),
		})
	}
	return out
}

func toBucketEntries(groups []stats.Group, gran period.Granularity, loc period.Locale) []dto.PeriodBucketDTO {
	out := make([]dto.PeriodBucketDTO, 0, len(groups))
	for _, g := range groups {
		item := dto.PeriodBucketDTO{BreakdownEntryDTO: entry(g, loc.BucketLabel(g.Key, gran))}
		if t, ok := stats.BucketTime(g.Key); ok {
			item.StartDate = t.Format(period.DateLayout)
		}
		out = append(out, item)
	}
	return out
}

func topN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
