package bridge

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Spok95/medcart/internal/apperr"
	"github.com/Spok95/medcart/internal/camunda"
	"github.com/Spok95/medcart/internal/infra/logger"
	"github.com/Spok95/medcart/internal/infra/metrics"
)

// EngineClient — то, что консьюмеру нужно от движка.
type EngineClient interface {
	FetchAndLock(ctx context.Context, topic string) ([]camunda.Task, error)
	Complete(ctx context.Context, taskID string, vars camunda.Variables) error
	Failure(ctx context.Context, taskID, message, details string, retries, retryTimeoutMs int) error
	WorkerID() string
}

const (
	// retries=0: задача остаётся проваленной до вмешательства оператора
	failureRetries        = 0
	failureRetryTimeoutMs = 1000

	pollBackoff = 5 * time.Second
)

// Bridge — супервизор: по одному long-poll консьюмеру на топик,
// все останавливаются вместе по отмене контекста.
type Bridge struct {
	newClient func(topic string) EngineClient
	handlers  *Handlers
	log       *slog.Logger
}

func New(newClient func(topic string) EngineClient, handlers *Handlers, log *slog.Logger) *Bridge {
	return &Bridge{newClient: newClient, handlers: handlers, log: log}
}

func (b *Bridge) topics() map[string]Handler {
	h := b.handlers
	return map[string]Handler{
		"inventory-check":    h.InventoryCheck,
		"ai-check":           h.AICheck,
		"update-stock":       h.UpdateStock,
		"create-order":       h.CreateOrder,
		"update-checklist":   h.UpdateChecklist,
		"check-carts":        h.CheckCarts,
		"create-cart":        h.CreateCart,
		"update-cart-status": h.UpdateCartStatus,
	}
}

// Run блокируется до отмены ctx и возврата всех консьюмеров.
func (b *Bridge) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for topic, handler := range b.topics() {
		wg.Add(1)
		go func(topic string, handler Handler) {
			defer wg.Done()
			b.consume(ctx, topic, handler)
		}(topic, handler)
	}
	wg.Wait()
}

func (b *Bridge) consume(ctx context.Context, topic string, handler Handler) {
	client := b.newClient(topic)
	log := logger.ForTopic(b.log, topic).With("worker_id", client.WorkerID())
	log.Info("listening for topic")

	for ctx.Err() == nil {
		tasks, err := client.FetchAndLock(ctx, topic)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			metrics.PollErrors.WithLabelValues(topic).Inc()
			log.Error("fetchAndLock failed", "err", err)
			sleep(ctx, pollBackoff)
			continue
		}

		// хендлер доводится до конца, отмена проверяется между задачами
		for _, task := range tasks {
			b.runTask(ctx, client, log, topic, handler, task)
		}
	}
	log.Info("consumer stopped")
}

func (b *Bridge) runTask(ctx context.Context, client EngineClient, log *slog.Logger, topic string, handler Handler, task camunda.Task) {
	out, err := handler(ctx, task.Variables)
	if err != nil {
		b.reportFailure(ctx, client, log, topic, task.ID, err)
		return
	}

	if err := client.Complete(ctx, task.ID, camunda.NewVariables(out)); err != nil {
		// транспортная ошибка к движку — тоже провал задачи
		log.Error("complete failed", "task_id", task.ID, "err", err)
		b.reportFailure(ctx, client, log, topic, task.ID, err)
		return
	}
	metrics.TasksCompleted.WithLabelValues(topic).Inc()
	log.Debug("task completed", "task_id", task.ID)
}

func (b *Bridge) reportFailure(ctx context.Context, client EngineClient, log *slog.Logger, topic, taskID string, cause error) {
	metrics.TasksFailed.WithLabelValues(topic).Inc()

	msg, details := apperr.Report(cause)
	if err := client.Failure(ctx, taskID, msg, details, failureRetries, failureRetryTimeoutMs); err != nil {
		log.Error("failure report not delivered", "task_id", taskID, "err", err)
		return
	}
	log.Warn("task failed", "task_id", taskID, "msg", msg)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
