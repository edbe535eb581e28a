package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"jobherald/internal/domain"
)

// AMQPFanOut mirrors every announced posting onto a durable exchange so
// downstream consumers (archivers, digests) get the same feed the chat
// channels do. Fan-out is best effort: failures never affect the
// announcement path or the commit ordering.
type AMQPFanOut struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

func NewAMQPFanOut(cfg AMQPConfig, logger *slog.Logger) (*AMQPFanOut, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name,
		cfg.RoutingKey,
		cfg.Exchange,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &AMQPFanOut{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

// PostingMessage is the wire format for fanned-out postings.
type PostingMessage struct {
	Category  string         `json:"category"`
	Posting   domain.Posting `json:"posting"`
	Timestamp time.Time      `json:"timestamp"`
}

func (f *AMQPFanOut) Publish(ctx context.Context, category string, p domain.Posting) error {
	msg := PostingMessage{
		Category:  category,
		Posting:   p,
		Timestamp: time.Now().UTC(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = f.channel.PublishWithContext(
		ctx,
		f.exchange,
		f.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	f.logger.Debug("fanned out posting",
		"category", category,
		"identity", p.Identity,
	)

	return nil
}

func (f *AMQPFanOut) Close() error {
	if f.channel != nil {
		f.channel.Close()
	}
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}
