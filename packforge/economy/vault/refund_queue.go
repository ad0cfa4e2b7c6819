package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
	"github.com/ellavondegurechaff/packforge/packforge/logger"
)

//go:generate mockgen -destination=mock/notifier.go -package=mock . Notifier

// Notifier delivers a message to a user.
type Notifier interface {
	Notify(ctx context.Context, userID, kind, title, message string) error
}

var ErrQueueStopped = errors.New("refund queue stopped")

type refundJob struct {
	userID     string
	holdingIDs []string
}

// RefundQueue runs refunds in the background. Every accepted job ends with a
// notification of its outcome.
type RefundQueue struct {
	service  *Service
	notifier Notifier
	workers  int

	mu      sync.RWMutex
	jobs    chan refundJob
	stopped bool
	wg      sync.WaitGroup
}

type QueueConfig struct {
	Async     bool `toml:"async"`
	Workers   int  `toml:"workers"`
	QueueSize int  `toml:"queue_size"`
}

func NewRefundQueue(service *Service, notifier Notifier, cfg QueueConfig) *RefundQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = config.DefaultRefundWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = config.DefaultRefundQueue
	}
	return &RefundQueue{
		service:  service,
		notifier: notifier,
		workers:  cfg.Workers,
		jobs:     make(chan refundJob, cfg.QueueSize),
	}
}

// Start launches the workers. Jobs keep running until Stop drains the queue.
func (q *RefundQueue) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for job := range q.jobs {
				q.process(ctx, job)
			}
		}()
	}
	logger.LogSystem("Refund queue started", slog.Int("workers", q.workers), slog.Int("capacity", cap(q.jobs)))
}

// Enqueue accepts a refund without blocking. It fails with
// economy.ErrRefundQueueFull when the queue is saturated.
func (q *RefundQueue) Enqueue(userID string, holdingIDs []string) error {
	ids := dedupe(holdingIDs)
	if len(ids) == 0 {
		return economy.ErrEmptySelection
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		return ErrQueueStopped
	}
	select {
	case q.jobs <- refundJob{userID: userID, holdingIDs: ids}:
		return nil
	default:
		return economy.ErrRefundQueueFull
	}
}

// Stop rejects new jobs and waits for queued ones to finish or ctx to end.
func (q *RefundQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.stopped {
		q.stopped = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("refund queue did not drain: %w", ctx.Err())
	}
}

func (q *RefundQueue) process(ctx context.Context, job refundJob) {
	ctx, cancel := context.WithTimeout(ctx, config.RefundJobTimeout)
	defer cancel()

	res, err := q.service.Refund(ctx, job.userID, job.holdingIDs)

	kind, title, message := models.NotificationRefundCompleted, "Refund completed", ""
	if err != nil {
		logger.LogError("Refund failed", err,
			slog.String("user_id", job.userID),
			slog.Any("holding_ids", job.holdingIDs),
		)
		kind, title = models.NotificationRefundFailed, "Refund failed"
		message = "Your refund could not be processed. No credits were changed."
		if e, ok := economy.As(err); ok {
			message = fmt.Sprintf("Your refund could not be processed: %s. No credits were changed.", e.Message)
		}
	} else {
		message = fmt.Sprintf("%d card(s) refunded for %s credits.", res.Cards, res.Credited.StringFixed(2))
	}

	if nerr := q.notifier.Notify(ctx, job.userID, kind, title, message); nerr != nil {
		logger.LogError("Failed to notify refund outcome", nerr, slog.String("user_id", job.userID))
	}
}
