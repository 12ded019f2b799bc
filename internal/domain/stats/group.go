package stats

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
	"github.com/jhoicas/umkm-stats-api/internal/domain/period"
)

// KeyFunc devuelve la clave de agrupación de una línea; ok=false excluye la línea del desglose
// (sigue contando en el total).
type KeyFunc func(l entity.SaleLine) (key string, ok bool)

// Order comparador de grupos para slices.SortFunc.
type Order func(a, b Group) int

// Group resultado de un desglose: las líneas del grupo, su agregado y su participación en el total.
type Group struct {
	Key string
	Aggregate
	ContributionPercent decimal.Decimal
	Lines               []entity.SaleLine
}

// GroupBy agrupa las líneas por clave, agrega cada grupo y calcula su participación sobre totalRevenue.
// Las líneas sin clave quedan fuera de los grupos.
func GroupBy(lines []entity.SaleLine, key KeyFunc, totalRevenue decimal.Decimal, order Order) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, l := range lines {
		k, ok := key(l)
		if !ok {
			continue
		}
		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Lines = append(groups[i].Lines, l)
	}

	for i := range groups {
		groups[i].Aggregate = Summarize(groups[i].Lines)
		groups[i].ContributionPercent = Share(groups[i].Revenue, totalRevenue)
	}
	if order != nil {
		slices.SortFunc(groups, order)
	}
	return groups
}

// ── Órdenes ───────────────────────────────────────────────────────────────────

// ByRevenueDesc mayor ingreso primero; empates por clave ascendente.
func ByRevenueDesc(a, b Group) int {
	if c := b.Revenue.Cmp(a.Revenue); c != 0 {
		return c
	}
	return strings.Compare(a.Key, b.Key)
}

// ByKeyAsc orden lexicográfico de clave (cronológico para claves de bucket).
func ByKeyAsc(a, b Group) int {
	return strings.Compare(a.Key, b.Key)
}

// ── Claves ────────────────────────────────────────────────────────────────────

// ByLocation agrupa por lokasi; las ventas sin lokasi se excluyen.
func ByLocation(l entity.SaleLine) (string, bool) {
	if l.Location == nil || l.Location.ID == "" {
		return "", false
	}
	return l.Location.ID, true
}

// ByProduct agrupa por producto.
func ByProduct(l entity.SaleLine) (string, bool) {
	return l.ProductID, l.ProductID != ""
}

// BySeller agrupa por vendedor (dueño del producto).
func BySeller(l entity.SaleLine) (string, bool) {
	id := l.SellerID()
	return id, id != ""
}

// ByBucket agrupa por bucket de tiempo de la fecha de venta.
func ByBucket(g period.Granularity) KeyFunc {
	return func(l entity.SaleLine) (string, bool) {
		return period.BucketKey(l.SaleDate, g), true
	}
}

// SellerMonthSep separador de la clave compuesta vendedor×mes.
const SellerMonthSep = "|"

// BySellerMonth clave compuesta "sellerID|YYYY-MM".
func BySellerMonth(l entity.SaleLine) (string, bool) {
	id := l.SellerID()
	if id == "" {
		return "", false
	}
	return id + SellerMonthSep + period.BucketKey(l.SaleDate, period.GranularityMonthly), true
}

// ── Datos por dimensión ───────────────────────────────────────────────────────

// BestSeller producto con más unidades vendidas en las líneas. Empate: menor id de producto.
type BestSeller struct {
	ProductID string
	Name      string
	Quantity  int64
}

// TopProduct devuelve el producto más vendido; ok=false si no hay líneas.
func TopProduct(lines []entity.SaleLine) (BestSeller, bool) {
	qty := make(map[string]int64)
	names := make(map[string]string)
	for _, l := range lines {
		qty[l.ProductID] += l.Quantity
		names[l.ProductID] = l.Product.Name
	}
	var best BestSeller
	found := false
	for id, q := range qty {
		if !found || q > best.Quantity || (q == best.Quantity && id < best.ProductID) {
			best = BestSeller{ProductID: id, Name: names[id], Quantity: q}
			found = true
		}
	}
	return best, found
}

// DistinctProducts número de productos distintos en las líneas.
func DistinctProducts(lines []entity.SaleLine) int {
	seen := make(map[string]struct{})
	for _, l := range lines {
		seen[l.ProductID] = struct{}{}
	}
	return len(seen)
}

// DistinctSellers número de vendedores con al menos una venta.
func DistinctSellers(lines []entity.SaleLine) int {
	seen := make(map[string]struct{})
	for _, l := range lines {
		if id := l.SellerID(); id != "" {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// BucketTime primer día del bucket representado por la clave ("2006-01" o "2006").
func BucketTime(key string) (time.Time, bool) {
	for _, layout := range []string{"2006-01", "2006"} {
		if t, err := time.Parse(layout, key); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortSellerRows ordena grupos vendedor×mes por nombre de vendedor y luego cronológicamente.
func SortSellerRows(groups []Group, sellerName func(Group) string) {
	slices.SortStableFunc(groups, func(a, b Group) int {
		return cmp.Or(
			strings.Compare(sellerName(a), sellerName(b)),
			strings.Compare(a.Key, b.Key),
		)
	})
}
