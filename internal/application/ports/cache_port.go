package ports

import (
	"context"
	"time"
)

// ResultCache puerto de salida para memorizar respuestas serializadas de estadísticas.
// Los adaptadores (memoria, Redis, deshabilitado) deben ser seguros para uso concurrente.
// Un error de caché nunca debe impedir responder: el llamante lo registra y calcula sin caché.
type ResultCache interface {
	// Get devuelve el payload guardado; ok=false si no existe o expiró.
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	// Set guarda el payload con el TTL indicado.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	// DeletePrefix elimina todas las entradas cuya clave empieza por prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
