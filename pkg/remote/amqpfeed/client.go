package amqpfeed

import (
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// Client is a connection to a RabbitMQ broker with one channel.
type Client struct {
	conn    *amqp091.Connection
	Channel *amqp091.Channel
}

// Dial connects to the broker and declares the exchange and the queue.
//
// The exchange is a fanout exchange so that every process bound to it receives
// all changes.
func Dial(url, exchange, queue string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:    conn,
		Channel: channel,
	}

	if err := client.setup(exchange, queue); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup(exchange, queue string) error {
	err := c.Channel.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.Channel.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.Channel.QueueBind(
		queue,    // queue name
		queue,    // routing key, ignored by fanout exchanges
		exchange, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	if c.Channel != nil {
		c.Channel.Close()
	}

	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}
