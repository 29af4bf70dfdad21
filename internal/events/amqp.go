package events

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPForwarder relays bus events to a RabbitMQ topic exchange, routed by event type.
type AMQPForwarder struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
	logger   *zerolog.Logger
}

// DialAMQP connects and declares a durable topic exchange.
func DialAMQP(url, exchange string, logger *zerolog.Logger) (*AMQPForwarder, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare %s: %w", exchange, err)
	}

	return &AMQPForwarder{conn: conn, ch: ch, exchange: exchange, logger: logger}, nil
}

// Handle is an EventHandler.
func (f *AMQPForwarder) Handle(event *Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.CreatedAt.UTC(),
		Type:         event.Type,
		Body:         event.Payload,
	}

	if err := f.ch.PublishWithContext(ctx, f.exchange, event.Type, false, false, msg); err != nil {
		f.logger.Error().Err(err).Str("event", event.Type).Msg("rabbitmq publish failed")
		return err
	}
	return nil
}

func (f *AMQPForwarder) Close() error {
	if err := f.ch.Close(); err != nil {
		f.logger.Warn().Err(err).Msg("rabbitmq channel close failed")
	}
	if f.conn == nil {
		return nil
	}
	return f.conn.Close()
}
