// Package statistics contiene los casos de uso del motor de estadísticas de ventas UMKM:
// resumen, desgloses por lokasi/producto/periodo, dashboard mensual y gráficos.
package statistics

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/umkm-stats-api/internal/domain"
	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
	"github.com/jhoicas/umkm-stats-api/internal/domain/period"
	"github.com/jhoicas/umkm-stats-api/internal/domain/repository"
)

// CanViewStatistics única regla de acceso: vendedores UMKM y administradores identificados.
func CanViewStatistics(a entity.Actor) bool {
	if a.UserID == "" {
		return false
	}
	return a.Role == entity.RoleSeller || a.Role == entity.RoleAdmin
}

func authorize(a entity.Actor) error {
	if !CanViewStatistics(a) {
		return fmt.Errorf("%w: el rol %q no puede consultar estadísticas", domain.ErrForbidden, a.Role)
	}
	return nil
}

// Scope restricciones opcionales de igualdad solicitadas por el cliente.
type Scope struct {
	SellerID   string
	LocationID string
	ProductID  string
}

// Validate exige UUIDs bien formados en los ids presentes.
func (s Scope) Validate() error {
	for name, id := range map[string]string{
		"seller_id":   s.SellerID,
		"location_id": s.LocationID,
		"product_id":  s.ProductID,
	} {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("%w: %s no es un UUID válido", domain.ErrInvalidInput, name)
		}
	}
	return nil
}

// BuildFilter combina el intervalo con las restricciones del cliente.
// Un UMKM siempre queda limitado a sus propias ventas; su seller_id explícito se suma con AND.
func BuildFilter(actor entity.Actor, iv period.Interval, s Scope) repository.SalesFilter {
	f := repository.SalesFilter{
		Start:      iv.Start,
		End:        iv.End,
		LocationID: strings.ToLower(s.LocationID),
		ProductID:  strings.ToLower(s.ProductID),
	}
	if !actor.IsAdmin() {
		f.SellerIDs = append(f.SellerIDs, actor.UserID)
	}
	if s.SellerID != "" {
		f.SellerIDs = append(f.SellerIDs, strings.ToLower(s.SellerID))
	}
	return f
}
