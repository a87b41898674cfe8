package di

import (
	"context"
	"errors"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"vivimap/internal/config"
	"vivimap/internal/platform/dispatch"
	"vivimap/internal/platform/mail"
	"vivimap/internal/platform/rabbitmq"
)

// emailEnqueuer is implemented by dispatch.Pool and rabbitmq.EmailPublisher.
type emailEnqueuer interface {
	Enqueue(ctx context.Context, msg mail.VerificationEmail) error
}

// EmailQueue is the running verification email pipeline.
type EmailQueue struct {
	emailEnqueuer
	stop func(ctx context.Context) error
}

// Close stops accepting tasks and waits for in-flight deliveries.
func (q *EmailQueue) Close(ctx context.Context) error {
	return q.stop(ctx)
}

// NewEmailQueue publishes tasks to RabbitMQ when a broker URL is configured
// and reachable; otherwise it delivers through an in-process worker pool.
func NewEmailQueue(ctx context.Context, cfg *config.Config, sender mail.Sender) *EmailQueue {
	if cfg.RabbitMQ.URL != "" {
		q, err := newRabbitQueue(ctx, cfg, sender)
		if err == nil {
			slog.Info("email dispatch via rabbitmq", "queue", cfg.RabbitMQ.EmailQueue)
			return q
		}
		slog.Warn("rabbitmq unavailable, dispatching emails in-process", "error", err)
	}

	pool := dispatch.NewPool(sender, cfg.Mail.Workers, 256)
	pool.Start()
	return &EmailQueue{emailEnqueuer: pool, stop: pool.Close}
}

func newRabbitQueue(ctx context.Context, cfg *config.Config, sender mail.Sender) (*EmailQueue, error) {
	conn, err := rabbitmq.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	worker := rabbitmq.NewEmailWorker(conn, sender, cfg.RabbitMQ.EmailQueue)
	// the worker outlives ctx cancellation until Close is called
	if err := worker.Start(context.WithoutCancel(ctx)); err != nil {
		_ = conn.Close()
		return nil, err
	}

	stop := func(context.Context) error {
		worker.Close()
		return closeConn(conn)
	}
	return &EmailQueue{
		emailEnqueuer: rabbitmq.NewEmailPublisher(conn, cfg.RabbitMQ.EmailQueue),
		stop:          stop,
	}, nil
}

func closeConn(conn *amqp.Connection) error {
	if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return err
	}
	return nil
}
