// Package amqp publishes notification events to RabbitMQ so external
// consumers (email, push) can deliver them out of process.
package amqp

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client wraps an AMQP connection and channel bound to a single
// durable direct exchange.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
}

// NewClient dials the broker and declares the exchange and queue. The
// queue is bound with its own name as routing key.
func NewClient(url, exchange, queue string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Client{conn: conn, channel: ch, exchange: exchange, queue: queue}, nil
}

// Publish marshals the payload as JSON and publishes it persistently,
// with a bounded timeout so a stuck broker cannot block callers.
func (c *Client) Publish(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.channel.PublishWithContext(ctx,
		c.exchange,
		c.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// Close releases the channel and connection.
func (c *Client) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
