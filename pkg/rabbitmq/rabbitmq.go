package rabbitmq

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	log      logrus.FieldLogger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL        string
	Exchange   string // topic exchange events are published to
	Queue      string // durable queue the notification worker reads
	BindingKey string
}

// DefaultConfig returns the exchange and queue names used by the storefront.
func DefaultConfig(url string) Config {
	return Config{
		URL:        url,
		Exchange:   "ticktee.orders",
		Queue:      "order_events",
		BindingKey: "#",
	}
}

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ, declares the exchange and queue and binds them.
func NewClient(cfg Config, log logrus.FieldLogger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	fail := func(step string, err error) (*Client, error) {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to %s: %w", step, err)
	}

	if err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		return fail("declare exchange "+cfg.Exchange, err)
	}

	if _, err := ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		return fail("declare queue "+cfg.Queue, err)
	}

	if err := ch.QueueBind(cfg.Queue, cfg.BindingKey, cfg.Exchange, false, nil); err != nil {
		return fail("bind queue "+cfg.Queue, err)
	}

	log.WithFields(logrus.Fields{"exchange": cfg.Exchange, "queue": cfg.Queue}).Info("RabbitMQ client connected")

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
		log:      log,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a JSON body to the exchange under routingKey.
func (c *Client) Publish(routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	err := c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	c.log.WithField("routing_key", routingKey).Debug("published event")
	return nil
}

// Consume starts a goroutine that hands every delivery body to handler.
// Successful deliveries are acked. Failed ones are nacked without requeue so a
// poison message cannot loop forever.
func (c *Client) Consume(handler func(routingKey string, body []byte) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			entry := c.log.WithFields(logrus.Fields{"delivery_tag": msg.DeliveryTag, "routing_key": msg.RoutingKey})
			if err := handler(msg.RoutingKey, msg.Body); err != nil {
				entry.WithError(err).Error("failed to process message")
				if nackErr := msg.Nack(false, false); nackErr != nil {
					entry.WithError(nackErr).Error("failed to nack message")
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				entry.WithError(ackErr).Error("failed to ack message")
			}
		}
		c.log.Info("RabbitMQ delivery channel closed")
	}()

	return nil
}
