package practice

import (
	"context"
	"time"
)

// defaults of the results page score animation
const (
	CounterStep     = 2
	CounterInterval = 20 * time.Millisecond
)

// CounterSteps lists the values an animated counter shows on its way to
// target: step, 2*step, ... clamped to target. There is always at least one
// value.
func CounterSteps(target, step int) []int {
	if step <= 0 {
		step = 1
	}
	var out []int
	for current := step; ; current += step {
		if current >= target {
			return append(out, target)
		}
		out = append(out, current)
	}
}

// AnimateCounter emits CounterSteps(target, step) on the returned channel,
// one value per interval. The channel is closed when the target is reached
// or ctx is cancelled.
func AnimateCounter(ctx context.Context, target, step int, interval time.Duration) <-chan int {
	values := CounterSteps(target, step)
	out := make(chan int)

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for _, v := range values {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			select {
			case <-ctx.Done():
				return
			case out <- v:
			}
		}
	}()

	return out
}
