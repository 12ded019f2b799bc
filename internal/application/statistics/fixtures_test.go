package statistics_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
	"github.com/jhoicas/umkm-stats-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake del repositorio de ventas: aplica SalesFilter en memoria y cuenta las llamadas.
// ──────────────────────────────────────────────────────────────────────────────

type fakeSalesRepo struct {
	mu      sync.Mutex
	lines   []entity.SaleLine
	calls   int
	filters []repository.SalesFilter
	err     error
	block   chan struct{} // si no es nil, ListSaleLines espera a que se cierre
}

func (r *fakeSalesRepo) ListSaleLines(ctx context.Context, f repository.SalesFilter) ([]entity.SaleLine, error) {
	r.mu.Lock()
	r.calls++
	r.filters = append(r.filters, f)
	block, err := r.block, r.err
	r.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	var out []entity.SaleLine
	for _, l := range r.lines {
		if f.Matches(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeSalesRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

var _ repository.SalesRepository = (*fakeSalesRepo)(nil)

// ──────────────────────────────────────────────────────────────────────────────
// Datos: dos vendedores, dos lokasi del vendedor A.
// ──────────────────────────────────────────────────────────────────────────────

const (
	sellerA = "11111111-1111-4111-8111-111111111111"
	sellerB = "22222222-2222-4222-8222-222222222222"
	adminID = "99999999-9999-4999-8999-999999999999"

	loc1 = "a1000000-0000-4000-8000-000000000001"
	loc2 = "a2000000-0000-4000-8000-000000000002"

	prodKeripik = "b1000000-0000-4000-8000-000000000001"
	prodSambal  = "b2000000-0000-4000-8000-000000000002"
	prodDodol   = "b3000000-0000-4000-8000-000000000003"
	prodUnsold  = "b4000000-0000-4000-8000-000000000004"
)

var (
	actorA     = entity.Actor{UserID: sellerA, Role: entity.RoleSeller}
	actorB     = entity.Actor{UserID: sellerB, Role: entity.RoleSeller}
	actorAdmin = entity.Actor{UserID: adminID, Role: entity.RoleAdmin}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

var (
	keripik = entity.Product{ID: prodKeripik, SellerID: sellerA, CategoryName: "Makanan", Name: "Keripik Singkong", Unit: "pcs", LaborCost: nd("5"), ProductionCost: nd("15")}
	sambal  = entity.Product{ID: prodSambal, SellerID: sellerA, CategoryName: "Bumbu", Name: "Sambal Roa", Unit: "botol", LaborCost: nd("30"), ProductionCost: nd("50")}
	dodol   = entity.Product{ID: prodDodol, SellerID: sellerB, CategoryName: "Makanan", Name: "Dodol Garut", Unit: "pcs"}

	pasar = &entity.Location{ID: loc1, SellerID: sellerA, Name: "Pasar Baru", Category: "Pasar", District: "Sukajadi", Regency: "Kota Bandung", Province: "Jawa Barat"}
	bazar = &entity.Location{ID: loc2, SellerID: sellerA, Name: "Bazar Car Free Day", Category: "Event", District: "Coblong", Regency: "Kota Bandung", Province: "Jawa Barat"}
)

var seq int

func sale(p entity.Product, loc *entity.Location, date time.Time, qty int64, price string) entity.SaleLine {
	seq++
	s := entity.Sale{
		ID:        decimal.NewFromInt(int64(seq)).String(),
		ProductID: p.ID,
		SaleDate:  date,
		Quantity:  qty,
		UnitPrice: dec(price),
	}
	s.TotalAmount = s.ComputeTotal()
	if loc != nil {
		s.LocationID = loc.ID
	}
	name := "Toko Ani"
	if p.SellerID == sellerB {
		name = "Budi Dodol"
	}
	return entity.SaleLine{Sale: s, Product: p, Location: loc, SellerName: name}
}

func on(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// marchScenario marzo 2024: vendedor A con L1 (3 ventas, 300/120) y L2 (1 venta, 100/80);
// vendedor B con una venta sin lokasi. Febrero 2024: una venta de A.
func marchScenario() []entity.SaleLine {
	return []entity.SaleLine{
		sale(keripik, pasar, on(2024, time.March, 2), 2, "50"),
		sale(keripik, pasar, on(2024, time.March, 9), 2, "50"),
		sale(keripik, pasar, on(2024, time.March, 16), 2, "50"),
		sale(sambal, bazar, on(2024, time.March, 17), 1, "100"),
		sale(dodol, nil, on(2024, time.March, 20), 5, "10"),
		sale(keripik, pasar, on(2024, time.February, 10), 1, "50"),
	}
}
