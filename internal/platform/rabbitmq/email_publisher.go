package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"vivimap/internal/platform/mail"
)

// EmailPublisher enqueues verification emails on a durable queue.
type EmailPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewEmailPublisher(conn *amqp.Connection, queueName string) *EmailPublisher {
	return &EmailPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *EmailPublisher) Enqueue(ctx context.Context, msg mail.VerificationEmail) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := declareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal email payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish email failed: %w", err)
	}
	return nil
}
