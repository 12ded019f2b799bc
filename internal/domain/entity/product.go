package entity

import (
	"github.com/shopspring/decimal"
)

// Product producto de un UMKM. Cada producto pertenece a un único vendedor.
// LaborCost y ProductionCost son costos unitarios opcionales; si faltan cuentan como cero.
type Product struct {
	ID             string
	SellerID       string
	CategoryName   string
	Name           string
	Unit           string // satuan: pcs, kg, botol...
	LaborCost      decimal.NullDecimal
	ProductionCost decimal.NullDecimal
}

// UnitCost costo unitario de los bienes vendidos (mano de obra + producción).
func (p Product) UnitCost() decimal.Decimal {
	cost := decimal.Zero
	if p.LaborCost.Valid {
		cost = cost.Add(p.LaborCost.Decimal)
	}
	if p.ProductionCost.Valid {
		cost = cost.Add(p.ProductionCost.Decimal)
	}
	return cost
}
