package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/automator/internal/logger"
	"github.com/MrSnakeDoc/automator/internal/metrics"
)

const (
	// DefaultQueueRetention is how long an entry may wait in a queue before it is dropped
	DefaultQueueRetention = 7 * 24 * time.Hour // 7 days
)

// QueueTrimmer is the queue storage the pruner works on.
type QueueTrimmer interface {
	QueueNames(ctx context.Context) ([]string, error)
	TrimQueue(ctx context.Context, queue string, before time.Time) (int64, error)
}

// QueuePruner drops entries that no automation service picked up in time
type QueuePruner struct {
	store     QueueTrimmer
	logger    logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewQueuePruner creates a new queue pruner
func NewQueuePruner(
	store QueueTrimmer,
	log logger.Logger,
	interval time.Duration,
	retention time.Duration,
) *QueuePruner {
	if retention == 0 {
		retention = DefaultQueueRetention
	}

	return &QueuePruner{
		store:     store,
		logger:    log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic pruning
func (p *QueuePruner) Start(ctx context.Context) error {
	// Run immediately on start
	if _, err := p.Prune(ctx); err != nil {
		p.logger.Warn("initial queue pruning failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(p.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := p.Prune(ctx); err != nil {
					p.logger.Error("queue pruning failed",
						logger.Error(err))
				}
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the pruner
func (p *QueuePruner) Stop() {
	close(p.stopCh)
}

// Prune trims every queue and returns the number of dropped entries.
// A failing queue is logged and skipped.
func (p *QueuePruner) Prune(ctx context.Context) (int64, error) {
	names, err := p.store.QueueNames(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := p.now().Add(-p.retention)
	var total int64
	for _, name := range names {
		n, err := p.store.TrimQueue(ctx, name, cutoff)
		if err != nil {
			p.logger.Warn("failed to prune queue",
				logger.String("queue", name),
				logger.Error(err))
			continue
		}
		if n > 0 {
			metrics.QueuePruned(name, n)
			p.logger.Info("pruned stale queue entries",
				logger.String("queue", name),
				logger.Int64("pruned", n))
		}
		total += n
	}

	if total == 0 {
		p.logger.Debug("no queue entries to prune")
	}
	return total, nil
}
