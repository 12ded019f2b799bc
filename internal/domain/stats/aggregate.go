// Package stats contiene las reglas puras de agregación financiera sobre líneas de venta:
// ingresos, costos, utilidad bruta, margen, participación y variaciones entre periodos.
// No conoce HTTP, SQL ni caché.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Aggregate métricas base de un conjunto de ventas.
// MarginPercent es nulo cuando Revenue es cero.
type Aggregate struct {
	TransactionCount int64
	UnitsSold        int64
	Revenue          decimal.Decimal
	Cost             decimal.Decimal
	GrossProfit      decimal.Decimal
	MarginPercent    decimal.NullDecimal
}

// Summarize calcula el agregado base. GrossProfit = Revenue − Cost siempre de forma exacta.
func Summarize(lines []entity.SaleLine) Aggregate {
	agg := Aggregate{Revenue: decimal.Zero, Cost: decimal.Zero}
	for _, l := range lines {
		agg.TransactionCount++
		agg.UnitsSold += l.Quantity
		agg.Revenue = agg.Revenue.Add(l.TotalAmount)
		agg.Cost = agg.Cost.Add(l.Cost())
	}
	agg.GrossProfit = agg.Revenue.Sub(agg.Cost)
	agg.MarginPercent = Margin(agg.GrossProfit, agg.Revenue)
	return agg
}

// Margin profit / revenue × 100 redondeado a 2 decimales; nulo si revenue no es positivo.
func Margin(profit, revenue decimal.Decimal) decimal.NullDecimal {
	if !revenue.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(profit.Div(revenue).Mul(hundred).Round(2))
}

// Share participación de part sobre total en porcentaje (2 decimales); 0 si total no es positivo.
func Share(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).Round(2)
}

// Delta variación porcentual (current - previous) / previous * 100, redondeada a 2 decimales.
// Con previous = 0: 100 si current > 0, 0 en otro caso.
func Delta(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

// DeltaCount Delta para contadores enteros.
func DeltaCount(current, previous int64) decimal.Decimal {
	return Delta(decimal.NewFromInt(current), decimal.NewFromInt(previous))
}

// PerDay promedio diario redondeado a 2 decimales; 0 si days no es positivo.
func PerDay(value decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return value.Div(decimal.NewFromInt(int64(days))).Round(2)
}

// AvgUnitPrice precio promedio de venta (Revenue / UnitsSold); nulo si no hay unidades.
func (a Aggregate) AvgUnitPrice() decimal.NullDecimal {
	if a.UnitsSold <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(a.Revenue.Div(decimal.NewFromInt(a.UnitsSold)).Round(2))
}
