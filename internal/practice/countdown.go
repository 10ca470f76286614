package practice

import (
	"context"
	"errors"
	"sync"
	"time"
)

// TimerOff disables the countdown.
const TimerOff time.Duration = 0

// the durations offered to the user
var TimerDurations = []time.Duration{
	30 * time.Second,
	60 * time.Second,
	120 * time.Second,
	180 * time.Second,
}

const (
	QuizTimerDefault     = 30 * time.Second
	PracticeTimerDefault = 120 * time.Second
)

var ErrInvalidDuration = errors.New("unsupported timer duration")

func ValidTimerDuration(d time.Duration) bool {
	if d == TimerOff {
		return true
	}
	for _, allowed := range TimerDurations {
		if d == allowed {
			return true
		}
	}
	return false
}

type CountdownOption func(*Countdown)

// WithTickInterval sets how much wall-clock time one second of the countdown
// takes. Tests use it to compress a 30s timer into milliseconds.
func WithTickInterval(d time.Duration) CountdownOption {
	return func(c *Countdown) {
		c.tick = d
	}
}

// WithOnTick registers a callback that receives the remaining time after each tick.
func WithOnTick(fn func(remaining time.Duration)) CountdownOption {
	return func(c *Countdown) {
		c.onTick = fn
	}
}

// Countdown counts down in one-second steps and fires onExpire once when it
// reaches zero, unless stopped first.
type Countdown struct {
	total    time.Duration
	tick     time.Duration
	onExpire func()
	onTick   func(time.Duration)

	mu        sync.Mutex
	remaining time.Duration
	started   bool
	stopped   bool
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewCountdown(total time.Duration, onExpire func(), opts ...CountdownOption) (*Countdown, error) {
	if total == TimerOff || !ValidTimerDuration(total) {
		return nil, ErrInvalidDuration
	}
	c := &Countdown{
		total:     total,
		tick:      time.Second,
		onExpire:  onExpire,
		remaining: total,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start begins counting. Calling it twice has no effect. Cancelling ctx
// stops the countdown without firing onExpire.
func (c *Countdown) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	go c.run(ctx)
}

func (c *Countdown) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.stopped {
				c.mu.Unlock()
				return
			}
			c.remaining -= time.Second
			remaining := c.remaining
			c.mu.Unlock()

			if c.onTick != nil {
				c.onTick(remaining)
			}
			if remaining <= 0 {
				c.mu.Lock()
				fire := !c.stopped
				c.stopped = true
				c.mu.Unlock()
				if fire && c.onExpire != nil {
					c.onExpire()
				}
				return
			}
		}
	}
}

// Stop cancels the countdown. onExpire will not fire after Stop returns
// unless it was already running.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	if c.cancel != nil {
		c.cancel()
	} else {
		close(c.done)
	}
}

func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Done is closed once the countdown has expired or been stopped.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
