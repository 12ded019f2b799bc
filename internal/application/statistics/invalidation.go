package statistics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/umkm-stats-api/internal/application/ports"
	"github.com/jhoicas/umkm-stats-api/internal/domain"
	"github.com/jhoicas/umkm-stats-api/pkg/logger"
)

// Tipos de evento de venta publicados por el servicio de registro de ventas.
const (
	EventSaleReported  = "sale.reported"
	EventSaleCorrected = "sale.corrected"
	EventSaleDeleted   = "sale.deleted"
)

// SaleEvent cuerpo JSON de un evento de venta.
type SaleEvent struct {
	Type     string `json:"type"`
	SaleID   string `json:"saleId"`
	SellerID string `json:"sellerId"`
}

// Invalidator borra de la caché las respuestas afectadas por un cambio en las ventas:
// las del vendedor dueño de la venta y todas las de administradores.
type Invalidator struct {
	cache ports.ResultCache
	log   *logger.Logger
}

// NewInvalidator construye el invalidador.
func NewInvalidator(cache ports.ResultCache, log *logger.Logger) *Invalidator {
	return &Invalidator{cache: cache, log: log}
}

// HandleSaleEvent procesa un mensaje. JSON inválido devuelve error (el consumidor reintenta y luego descarta);
// tipos desconocidos se ignoran.
func (i *Invalidator) HandleSaleEvent(ctx context.Context, body []byte) error {
	var ev SaleEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: evento de venta: %v", domain.ErrInvalidInput, err)
	}
	switch ev.Type {
	case EventSaleReported, EventSaleCorrected, EventSaleDeleted:
	default:
		i.log.Debug().Str("type", ev.Type).Msg("statistics: evento ignorado")
		return nil
	}
	if i.cache == nil {
		return nil
	}

	prefixes := []string{AdminPrefix()}
	if ev.SellerID != "" {
		prefixes = append(prefixes, SellerPrefix(ev.SellerID))
	}
	for _, p := range prefixes {
		if err := i.cache.DeletePrefix(ctx, p); err != nil {
			return fmt.Errorf("statistics: invalidar %s: %w", p, err)
		}
	}
	i.log.Info().Str("type", ev.Type).Str("seller_id", ev.SellerID).Msg("statistics: caché invalidada")
	return nil
}
