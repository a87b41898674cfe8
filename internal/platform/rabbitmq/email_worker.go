package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"vivimap/internal/platform/logging"
	"vivimap/internal/platform/mail"
)

const sendTimeout = 30 * time.Second

// EmailWorker consumes the verification email queue and delivers each task.
type EmailWorker struct {
	conn      *amqp.Connection
	sender    mail.Sender
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEmailWorker(conn *amqp.Connection, sender mail.Sender, queueName string) *EmailWorker {
	return &EmailWorker{
		conn:      conn,
		sender:    sender,
		queueName: queueName,
	}
}

func (w *EmailWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := declareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

// handle decodes and sends one task. Failures are logged at CRITICAL and the
// delivery is dropped rather than redelivered.
func (w *EmailWorker) handle(ctx context.Context, body []byte) error {
	var msg mail.VerificationEmail
	if err := json.Unmarshal(body, &msg); err != nil {
		slog.Error("worker decode email task failed", "error", err)
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := w.sender.SendVerification(sendCtx, msg); err != nil {
		logging.Critical(sendCtx, "verification email delivery failed", "email", msg.To, "error", err)
		return err
	}
	return nil
}

func (w *EmailWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
