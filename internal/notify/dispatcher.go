package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Deliver hands a fired reminder to whatever presents it to the user
type Deliver func(ctx context.Context, reminder Reminder)

// LogDelivery writes fired reminders to the logger
func LogDelivery(logger *zap.Logger) Deliver {
	return func(ctx context.Context, reminder Reminder) {
		logger.Info("Reminder fired",
			zap.String("task_id", reminder.TaskID.String()),
			zap.String("title", reminder.Title),
			zap.String("body", reminder.Body),
		)
	}
}

// Dispatcher polls a Scheduler and delivers due reminders until its context ends
type Dispatcher struct {
	scheduler Scheduler
	deliver   Deliver
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewDispatcher(scheduler Scheduler, deliver Deliver, interval time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		scheduler: scheduler,
		deliver:   deliver,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("Reminder dispatcher started", zap.Duration("interval", d.interval))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Reminder dispatcher stopped")
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick delivers every reminder due at the current time and returns how many fired
func (d *Dispatcher) Tick(ctx context.Context) int {
	due, err := d.scheduler.Due(ctx, d.now())
	if err != nil {
		d.logger.Error("Failed to poll reminders", zap.Error(err))
	}
	for _, r := range due {
		d.deliver(ctx, r)
	}
	return len(due)
}
