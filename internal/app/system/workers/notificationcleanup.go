// internal/app/system/workers/notificationcleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	notificationstore "github.com/cardfolio/clubhouse/internal/app/store/notifications"
	"github.com/cardfolio/clubhouse/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// NotificationCleanup is a background worker that prunes old notifications.
type NotificationCleanup struct {
	notifications *notificationstore.Store
	log           *zap.Logger
	interval      time.Duration
	retention     time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewNotificationCleanup creates a new notification cleanup worker.
//
// Parameters:
//   - store: the notifications store
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 1 hour)
//   - retention: how long notifications are kept before pruning (e.g., 90 days)
func NewNotificationCleanup(store *notificationstore.Store, logger *zap.Logger, interval, retention time.Duration) *NotificationCleanup {
	return &NotificationCleanup{
		notifications: store,
		log:           logger,
		interval:      interval,
		retention:     retention,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *NotificationCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("notification cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *NotificationCleanup) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("notification cleanup worker stopped")
}

func (w *NotificationCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *NotificationCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
	defer cancel()

	cutoff := time.Now().UTC().Add(-w.retention)
	count, err := w.notifications.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		w.log.Error("failed to prune old notifications", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("pruned old notifications", zap.Int64("count", count))
	}
}
