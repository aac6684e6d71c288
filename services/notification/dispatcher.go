package notification

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"tuwi/models"
)

// Dispatcher runs notifications detached from the request that triggered them.
// Each notification gets its own timeout; errors and panics are logged and
// never reach the caller.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *zap.Logger

	wg     conc.WaitGroup
	closed atomic.Bool
}

func NewDispatcher(notifier Notifier, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{notifier: notifier, timeout: timeout, logger: logger}
}

// Dispatch returns immediately.
func (d *Dispatcher) Dispatch(b models.Booking) {
	if d.closed.Load() {
		d.logger.Warn("Notification dropped, dispatcher closed", zap.String("bookingId", b.ID.String()))
		return
	}
	d.wg.Go(func() { d.notify(b) })
}

func (d *Dispatcher) notify(b models.Booking) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	var pc panics.Catcher
	var err error
	pc.Try(func() { err = d.notifier.BookingCreated(ctx, b) })

	if r := pc.Recovered(); r != nil {
		d.logger.Error("Booking notifier panicked",
			zap.String("bookingId", b.ID.String()),
			zap.Any("panic", r.Value),
			zap.ByteString("stack", r.Stack))
		return
	}
	if err != nil {
		d.logger.Warn("Booking notification failed",
			zap.String("bookingId", b.ID.String()),
			zap.String("braiderId", b.BraiderID.String()),
			zap.Error(err))
	}
}

// Close stops accepting work and waits for in-flight notifications until ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closed.Store(true)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
