package repository

import (
	"context"
	"time"

	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
)

// SalesFilter predicado combinado (AND) sobre las ventas: rango de fechas inclusivo y restricciones de igualdad.
// Cada id de SellerIDs se aplica como una condición más; dos ids distintos producen un conjunto vacío.
type SalesFilter struct {
	Start      time.Time
	End        time.Time
	SellerIDs  []string
	LocationID string
	ProductID  string
}

// Matches evalúa el filtro en memoria con la misma semántica que la consulta SQL.
func (f SalesFilter) Matches(l entity.SaleLine) bool {
	d := time.Date(l.SaleDate.Year(), l.SaleDate.Month(), l.SaleDate.Day(), 0, 0, 0, 0, time.UTC)
	if !f.Start.IsZero() && d.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && d.After(f.End) {
		return false
	}
	for _, id := range f.SellerIDs {
		if l.SellerID() != id {
			return false
		}
	}
	if f.LocationID != "" && l.LocationID != f.LocationID {
		return false
	}
	if f.ProductID != "" && l.ProductID != f.ProductID {
		return false
	}
	return true
}

// SalesRepository lectura de ventas para estadísticas. Las implementaciones son read-only.
type SalesRepository interface {
	// ListSaleLines devuelve las ventas que cumplen el filtro junto con su producto, lokasi y vendedor,
	// ordenadas por fecha de venta e id.
	ListSaleLines(ctx context.Context, f SalesFilter) ([]entity.SaleLine, error)
}
