package queue

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/umkm-stats-api/pkg/logger"
)

const retryHeader = "x-retry-count"

// ErrConsumerClosed el broker cerró el canal de entregas.
var ErrConsumerClosed = errors.New("queue: consumer closed")

// HandlerFunc procesa el cuerpo de un mensaje; un error provoca reintento.
type HandlerFunc func(ctx context.Context, body []byte) error

// ConsumeWithRetry consume la cola hasta que ctx termine. Un mensaje fallido se republica en la
// misma cola con x-retry-count incrementado; superado maxRetries se rechaza sin requeue y la cola
// lo envía a su dead-letter.
func (c *Client) ConsumeWithRetry(
	ctx context.Context,
	queue string,
	handler HandlerFunc,
	maxRetries int,
	retryDelay time.Duration,
	log *logger.Logger,
) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		var msg amqp.Delivery
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case msg, ok = <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrConsumerClosed
			}
		}

		err := handler(ctx, msg.Body)
		if err == nil {
			_ = msg.Ack(false)
			continue
		}

		retryCount := getRetryCount(msg.Headers)
		log.Warn().Err(err).Str("queue", queue).Str("routing_key", msg.RoutingKey).
			Int("retry", retryCount).Msg("queue: mensaje fallido")
		if retryCount >= maxRetries {
			log.Error().Str("queue", queue).Int("retries", retryCount).Msg("queue: reintentos agotados, a dead-letter")
			_ = msg.Nack(false, false)
			continue
		}

		headers := amqp.Table{}
		for k, v := range msg.Headers {
			headers[k] = v
		}
		headers[retryHeader] = int32(retryCount + 1)

		select {
		case <-ctx.Done():
			_ = msg.Nack(false, true)
			return nil
		case <-time.After(retryDelay):
		}
		if err := c.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
			Timestamp:   time.Now(),
		}); err != nil {
			_ = msg.Nack(false, true)
			continue
		}
		_ = msg.Ack(false)
	}
}

func getRetryCount(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	switch t := headers[retryHeader].(type) {
	case int32:
		return int(t)
	case int64:
		return int(t)
	case int:
		return t
	}
	return 0
}
