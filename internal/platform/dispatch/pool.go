// Package dispatch runs verification email tasks on a bounded in-process
// worker pool, detached from the request that enqueued them.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"vivimap/internal/platform/logging"
	"vivimap/internal/platform/mail"
)

var (
	ErrQueueFull = errors.New("email queue is full")
	ErrClosed    = errors.New("email queue is closed")
)

// sendTimeout bounds a single delivery attempt.
const sendTimeout = 30 * time.Second

type Pool struct {
	sender  mail.Sender
	workers int
	tasks   chan mail.VerificationEmail

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool creates a pool with the given worker count and queue capacity.
func NewPool(sender mail.Sender, workers, capacity int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if capacity < 1 {
		capacity = 64
	}
	return &Pool{
		sender:  sender,
		workers: workers,
		tasks:   make(chan mail.VerificationEmail, capacity),
	}
}

// Start launches the workers. They exit once Close has drained the queue.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for msg := range p.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := p.sender.SendVerification(ctx, msg); err != nil {
			logging.Critical(ctx, "verification email delivery failed", "email", msg.To, "error", err)
		}
		cancel()
	}
}

// Enqueue hands msg to a worker without blocking.
func (p *Pool) Enqueue(_ context.Context, msg mail.VerificationEmail) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.tasks <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting tasks and waits for queued ones to finish or ctx to end.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("email queue drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
