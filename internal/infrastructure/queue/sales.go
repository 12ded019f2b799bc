package queue

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/umkm-stats-api/pkg/logger"
)

// Routing keys publicadas por el registro de ventas.
const (
	SalesBindingKey = "sale.*"

	salesMaxRetries = 3
	salesRetryDelay = 2 * time.Second
	salesPrefetch   = 16
)

// SalesTopology nombres del exchange y colas del consumidor de invalidación.
// Con InstanceID cada réplica recibe todos los eventos en su propia cola; sin él las réplicas
// comparten Queue y cada evento lo procesa una sola.
type SalesTopology struct {
	Exchange   string
	Queue      string
	InstanceID string
}

// ConsumerQueue cola de la que consume esta réplica.
func (t SalesTopology) ConsumerQueue() string {
	if t.InstanceID == "" {
		return t.Queue
	}
	return t.Queue + "." + t.InstanceID
}

// DeadLetterQueue cola que recibe los eventos que agotaron reintentos.
func (t SalesTopology) DeadLetterQueue() string {
	return t.Queue + ".dlq"
}

// queueArgs desvía los rechazos al dead-letter por el exchange por defecto.
func (t SalesTopology) queueArgs() amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": t.DeadLetterQueue(),
	}
}

// Setup declara exchange topic, dead-letter compartido y la cola de consumo enlazada a sale.*.
func (c *Client) Setup(t SalesTopology) error {
	if err := c.EnsureExchangeKind(t.Exchange, amqp.ExchangeTopic); err != nil {
		return fmt.Errorf("queue: exchange %s: %w", t.Exchange, err)
	}
	if _, err := c.EnsureQueueWithArgs(t.DeadLetterQueue(), nil); err != nil {
		return fmt.Errorf("queue: cola %s: %w", t.DeadLetterQueue(), err)
	}
	name := t.ConsumerQueue()
	declare := c.EnsureQueueWithArgs
	if t.InstanceID != "" {
		declare = c.EnsureInstanceQueue
	}
	if _, err := declare(name, t.queueArgs()); err != nil {
		return fmt.Errorf("queue: cola %s: %w", name, err)
	}
	if err := c.BindQueue(name, t.Exchange, SalesBindingKey); err != nil {
		return fmt.Errorf("queue: bind %s: %w", name, err)
	}
	return c.Qos(salesPrefetch)
}

// ConsumeSales declara la topología y procesa los eventos de venta hasta que ctx termine.
func (c *Client) ConsumeSales(ctx context.Context, t SalesTopology, handler HandlerFunc, log *logger.Logger) error {
	if err := c.Setup(t); err != nil {
		return err
	}
	log.Info().Str("exchange", t.Exchange).Str("queue", t.ConsumerQueue()).Msg("queue: consumidor de ventas iniciado")
	return c.ConsumeWithRetry(ctx, t.ConsumerQueue(), handler, salesMaxRetries, salesRetryDelay, log)
}
