// Package period resuelve los periodos de reporte (custom, mensual, anual) en intervalos
// de fechas inclusivos y calcula el intervalo equivalente del mes anterior.
package period

import (
	"fmt"
	"time"

	"github.com/jhoicas/umkm-stats-api/internal/domain"
)

// Kind tipo de periodo solicitado.
type Kind string

const (
	KindCustom  Kind = "custom"
	KindMonthly Kind = "monthly"
	KindYearly  Kind = "yearly"
)

// Granularity ancho de los buckets de la línea de tiempo.
type Granularity string

const (
	GranularityMonthly Granularity = "monthly"
	GranularityYearly  Granularity = "yearly"
)

// DateLayout formato de fecha de los parámetros y de las respuestas.
const DateLayout = "2006-01-02"

// Rango de años soportado por defecto.
const (
	DefaultMinYear = 2020
	DefaultMaxYear = 2030
)

// Request parámetros crudos del periodo. Year/Month en cero y fechas en cero significan "no enviado".
type Request struct {
	Kind      Kind
	Year      int
	Month     int
	StartDate time.Time
	EndDate   time.Time
}

// Interval intervalo de fechas civiles [Start, End], ambos inclusivos (medianoche UTC).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Days número de días del intervalo (siempre >= 1 para un intervalo resuelto).
func (i Interval) Days() int {
	return int(i.End.Sub(i.Start).Hours()/24) + 1
}

// Contains true si la fecha (civil) cae dentro del intervalo.
func (i Interval) Contains(t time.Time) bool {
	d := civil(t)
	return !d.Before(i.Start) && !d.After(i.End)
}

// Spec periodo resuelto: intervalo, parámetros originales y el intervalo del mes anterior.
type Spec struct {
	Kind  Kind
	Year  int
	Month int
	Interval
	Previous Interval
}

// Granularity granularidad natural del periodo: anual para periodos anuales, mensual para el resto.
func (s Spec) Granularity() Granularity {
	if s.Kind == KindYearly {
		return GranularityYearly
	}
	return GranularityMonthly
}

// Resolver valida y resuelve periodos dentro del rango de años soportado.
type Resolver struct {
	minYear int
	maxYear int
}

// NewResolver construye el resolver. Valores no positivos usan el rango por defecto.
func NewResolver(minYear, maxYear int) *Resolver {
	if minYear <= 0 {
		minYear = DefaultMinYear
	}
	if maxYear <= 0 {
		maxYear = DefaultMaxYear
	}
	return &Resolver{minYear: minYear, maxYear: maxYear}
}

// Resolve convierte la solicitud en un Spec. Cualquier inconsistencia devuelve domain.ErrInvalidPeriod;
// nunca se aplican valores por defecto silenciosos salvo el tipo (mensual) cuando viene vacío.
func (r *Resolver) Resolve(req Request) (Spec, error) {
	kind := req.Kind
	if kind == "" {
		kind = KindMonthly
	}

	var iv Interval
	switch kind {
	case KindCustom:
		if req.StartDate.IsZero() || req.EndDate.IsZero() {
			return Spec{}, invalid("start_date y end_date son obligatorios para un periodo custom")
		}
		start, end := civil(req.StartDate), civil(req.EndDate)
		if start.After(end) {
			return Spec{}, invalid("start_date no puede ser posterior a end_date")
		}
		iv = Interval{Start: start, End: end}

	case KindMonthly, KindYearly:
		if req.Year == 0 {
			return Spec{}, invalid("year es obligatorio para periodos mensuales o anuales")
		}
		if req.Year < r.minYear || req.Year > r.maxYear {
			return Spec{}, invalid(fmt.Sprintf("year debe estar entre %d y %d", r.minYear, r.maxYear))
		}
		if req.Month != 0 && (req.Month < 1 || req.Month > 12) {
			return Spec{}, invalid("month debe estar entre 1 y 12")
		}
		if kind == KindMonthly && req.Month != 0 {
			iv = MonthInterval(req.Year, time.Month(req.Month))
		} else {
			iv = YearInterval(req.Year)
		}

	default:
		return Spec{}, invalid(fmt.Sprintf("period_type desconocido: %q", kind))
	}

	month := req.Month
	if kind != KindMonthly {
		month = 0
	}
	return Spec{
		Kind:     kind,
		Year:     req.Year,
		Month:    month,
		Interval: iv,
		Previous: ShiftMonthBack(iv),
	}, nil
}

// ForMonth Spec mensual del mes que contiene t (para el dashboard; no valida el rango de años).
func ForMonth(t time.Time) Spec {
	iv := MonthInterval(t.Year(), t.Month())
	return Spec{
		Kind:     KindMonthly,
		Year:     t.Year(),
		Month:    int(t.Month()),
		Interval: iv,
		Previous: ShiftMonthBack(iv),
	}
}

// MonthInterval primer a último día del mes.
func MonthInterval(year int, month time.Month) Interval {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Interval{Start: start, End: lastDayOfMonth(year, month)}
}

// YearInterval 1 de enero a 31 de diciembre.
func YearInterval(year int) Interval {
	return Interval{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// ShiftMonthBack desplaza el intervalo un mes calendario hacia atrás (enero → diciembre del año anterior).
// Un fin de intervalo en el último día del mes se desplaza al último día del mes anterior.
func ShiftMonthBack(iv Interval) Interval {
	end := shiftDate(iv.End, -1)
	if iv.End.Equal(lastDayOfMonth(iv.End.Year(), iv.End.Month())) {
		end = lastDayOfMonth(end.Year(), end.Month())
	}
	return Interval{Start: shiftDate(iv.Start, -1), End: end}
}

// shiftDate mueve la fecha n meses conservando el día, recortado al último día del mes destino.
func shiftDate(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	last := lastDayOfMonth(first.Year(), first.Month())
	day := t.Day()
	if day > last.Day() {
		day = last.Day()
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}

// civil normaliza a fecha civil (medianoche UTC) conservando año/mes/día de la zona original.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate interpreta YYYY-MM-DD; cadena vacía devuelve la fecha cero.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, invalid(fmt.Sprintf("fecha inválida %q, formato esperado YYYY-MM-DD", s))
	}
	return t, nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidPeriod, msg)
}
