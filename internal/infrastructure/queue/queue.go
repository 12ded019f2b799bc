// Package queue cliente AMQP (RabbitMQ) para los eventos de ventas que invalidan la caché de estadísticas.
package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client conexión y canal AMQP.
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// New abre la conexión y un canal.
func New(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("queue: channel: %w", err)
	}
	return &Client{conn: conn, ch: ch}, nil
}

// Close cierra canal y conexión.
func (c *Client) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// EnsureExchangeKind declara un exchange durable (topic por defecto).
func (c *Client) EnsureExchangeKind(name, kind string) error {
	if kind == "" {
		kind = amqp.ExchangeTopic
	}
	return c.ch.ExchangeDeclare(name, kind, true, false, false, false, nil)
}

// EnsureQueueWithArgs declara una cola durable con argumentos (DLX, TTL...).
func (c *Client) EnsureQueueWithArgs(name string, args amqp.Table) (amqp.Queue, error) {
	return c.ch.QueueDeclare(name, true, false, false, false, args)
}

// EnsureInstanceQueue declara una cola exclusiva de esta conexión que se borra al cerrarla.
func (c *Client) EnsureInstanceQueue(name string, args amqp.Table) (amqp.Queue, error) {
	return c.ch.QueueDeclare(name, false, true, true, false, args)
}

// BindQueue enlaza la cola al exchange con la routing key.
func (c *Client) BindQueue(queueName, exchange, routingKey string) error {
	return c.ch.QueueBind(queueName, routingKey, exchange, false, nil)
}

// Qos limita los mensajes sin ack entregados al consumidor.
func (c *Client) Qos(prefetch int) error {
	return c.ch.Qos(prefetch, 0, false)
}
