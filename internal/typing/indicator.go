// Package typing keeps a channel's typing indicator alive while a reply is
// being generated. Discord's indicator expires after roughly ten seconds, so
// it has to be re-triggered for long generations.
package typing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultRefreshInterval re-triggers comfortably inside Discord's ~10s
// indicator lifetime.
const DefaultRefreshInterval = 8 * time.Second

// TriggerFunc fires one typing indication. It is the only coupling to the
// gateway, which keeps the indicator testable.
type TriggerFunc func() error

// Indicator refreshes a typing indication until stopped. One Indicator
// serves one in-flight reply; create a fresh one per request.
type Indicator struct {
	trigger  TriggerFunc
	interval time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewIndicator creates an indicator. A non-positive interval uses the
// default.
func NewIndicator(trigger TriggerFunc, interval time.Duration, logger *slog.Logger) *Indicator {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indicator{
		trigger:  trigger,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start fires the first indication immediately and refreshes on the interval
// until Stop is called or ctx is cancelled. Trigger failures are logged and
// the loop keeps going; a missing indicator is cosmetic.
func (i *Indicator) Start(ctx context.Context) {
	if err := i.trigger(); err != nil {
		i.logger.Debug("typing trigger failed", "error", err)
	}

	go func() {
		defer close(i.done)
		ticker := time.NewTicker(i.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-i.stop:
				return
			case <-ticker.C:
				if err := i.trigger(); err != nil {
					i.logger.Debug("typing trigger failed", "error", err)
				}
			}
		}
	}()
}

// Stop ends the refresh loop and waits for it to exit. Safe to call more
// than once and safe to call before Start returns.
func (i *Indicator) Stop() {
	i.stopOnce.Do(func() { close(i.stop) })
	<-i.done
}
