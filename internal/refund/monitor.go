package refund

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/avax-reflights/refundservice/internal/domain"
)

// DefaultRefreshInterval is how often the countdown recomputes eligibility
const DefaultRefreshInterval = 60 * time.Second

// Update is one recomputation result delivered by a Monitor
type Update struct {
	Eligibility domain.RefundEligibility
	Err         error
}

// ComputeFunc recomputes eligibility at the current instant
type ComputeFunc func(ctx context.Context) (domain.RefundEligibility, error)

// Monitor periodically recomputes refund eligibility so the countdown and
// the displayed amounts track wall-clock time. It replaces implicit
// re-render triggers with an explicit timer: one computation runs at a time,
// and a new tick cancels the previous in-flight computation before starting
// its own, so a stale result can never overwrite a newer one.
type Monitor struct {
	interval time.Duration
	compute  ComputeFunc
	logger   *zap.Logger
}

// NewMonitor creates a monitor. A non-positive interval falls back to the
// default 60 seconds.
func NewMonitor(interval time.Duration, compute ComputeFunc, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Monitor{
		interval: interval,
		compute:  compute,
		logger:   logger,
	}
}

// Run starts the monitor. It computes once immediately, then on every tick,
// and delivers results on the returned channel. A slow consumer only ever
// sees the latest result; stale updates are dropped. The channel is closed
// and the ticker released when ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) <-chan Update {
	out := make(chan Update, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		cancel := m.computeOnce(ctx, out, func() {})

		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-ticker.C:
				cancel = m.computeOnce(ctx, out, cancel)
			}
		}
	}()

	return out
}

// computeOnce cancels the previous in-flight computation, runs a fresh one,
// and publishes the result. It returns the cancel func for the new run.
func (m *Monitor) computeOnce(ctx context.Context, out chan Update, cancelPrev context.CancelFunc) context.CancelFunc {
	cancelPrev()

	runCtx, cancel := context.WithCancel(ctx)

	eligibility, err := m.compute(runCtx)
	if runCtx.Err() != nil {
		return cancel
	}
	if err != nil {
		m.logger.Warn("Eligibility recomputation failed", zap.Error(err))
	}

	update := Update{Eligibility: eligibility, Err: err}

	select {
	case out <- update:
	default:
		// Drop the stale update and replace it with the fresh one
		select {
		case <-out:
		default:
		}
		select {
		case out <- update:
		default:
		}
	}

	return cancel
}
