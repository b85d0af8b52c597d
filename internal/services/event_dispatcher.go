package services

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

// EventDispatcher runs webhook event handlers on a pool of background
// workers so the HTTP boundary can acknowledge the platform immediately.
// A slow or panicking handler cannot block or fail an acknowledgment that
// has already been sent.
type EventDispatcher struct {
	events      chan billing.VerifiedEvent
	router      *EventRouter
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *zap.Logger
}

// NewEventDispatcher creates a dispatcher with the given number of workers
// and queue buffer size.
func NewEventDispatcher(router *EventRouter, workerCount int, bufferSize int, logger *zap.Logger) *EventDispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventDispatcher{
		events:      make(chan billing.VerifiedEvent, bufferSize),
		router:      router,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Start launches the worker goroutines.
func (d *EventDispatcher) Start() {
	d.logger.Info("Starting event dispatcher", zap.Int("worker_count", d.workerCount))

	for i := 0; i < d.workerCount; i++ {
		workerID := i
		d.wg.Add(1)

		go func() {
			defer d.wg.Done()
			d.logger.Debug("Event dispatch worker started", zap.Int("worker_id", workerID))

			for {
				select {
				case <-d.ctx.Done():
					d.logger.Debug("Event dispatch worker stopped", zap.Int("worker_id", workerID))
					return
				case event := <-d.events:
					d.process(d.ctx, event)
				}
			}
		}()
	}
}

// Stop cancels the workers, waits for in-flight handlers to return, then
// drains events still sitting in the buffer. Those events were already
// acknowledged to the platform, so they are processed inline rather than
// dropped.
func (d *EventDispatcher) Stop() {
	d.logger.Info("Stopping event dispatcher")
	d.cancel()
	d.wg.Wait()

	drained := 0
	for {
		select {
		case event := <-d.events:
			d.process(context.Background(), event)
			drained++
		default:
			if drained > 0 {
				d.logger.Info("Processed buffered events during shutdown", zap.Int("count", drained))
			}
			d.logger.Info("Event dispatcher stopped")
			return
		}
	}
}

// Submit queues a verified event for background dispatch. It never blocks:
// if the queue is full the event is dropped with an error, and redelivery is
// left to the platform's retry policy.
func (d *EventDispatcher) Submit(event billing.VerifiedEvent) error {
	select {
	case d.events <- event:
		return nil
	default:
		d.logger.Warn("Event queue full, dropping event",
			zap.String("event_type", event.Type),
			zap.String("event_id", event.ProviderEventID))
		return errors.New("event queue is full")
	}
}

// process dispatches one event, isolating handler panics so they never
// reach the worker loop.
func (d *EventDispatcher) process(ctx context.Context, event billing.VerifiedEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Recovered from panic in webhook event handler",
				zap.String("event_type", event.Type),
				zap.String("event_id", event.ProviderEventID),
				zap.Any("panic", r))
		}
	}()

	d.router.Dispatch(ctx, event)
}
