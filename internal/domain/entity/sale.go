package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale representa una venta reportada por un UMKM (produk terjual).
// TotalAmount se calcula al reportar (Quantity × UnitPrice) y no se recalcula en analítica.
type Sale struct {
	ID          string
	ProductID   string
	LocationID  string // vacío si la venta no tiene lokasi de venta
	SaleDate    time.Time
	Quantity    int64
	UnitPrice   decimal.Decimal
	TotalAmount decimal.Decimal
	Note        string
	ReportedAt  time.Time
}

// ComputeTotal devuelve Quantity × UnitPrice.
func (s Sale) ComputeTotal() decimal.Decimal {
	return s.UnitPrice.Mul(decimal.NewFromInt(s.Quantity))
}

// SaleLine vista de lectura de una venta con su producto, su lokasi (opcional) y el vendedor.
// Es lo que el repositorio de ventas entrega al motor de estadísticas.
type SaleLine struct {
	Sale
	Product    Product
	Location   *Location // nil si la venta no tiene lokasi
	SellerName string
}

// Cost costo de la línea: Quantity × (costo de mano de obra + costo de producción).
func (l SaleLine) Cost() decimal.Decimal {
	return l.Product.UnitCost().Mul(decimal.NewFromInt(l.Quantity))
}

// SellerID dueño de la venta (a través del producto).
func (l SaleLine) SellerID() string {
	return l.Product.SellerID
}
