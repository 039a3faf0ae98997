package session

import (
	"fmt"
	"sync"
	"time"
)

// Countdown decrements a remaining duration on every tick and calls onExpire
// once when it reaches zero.
type Countdown struct {
	mu        sync.Mutex
	remaining time.Duration
	step      time.Duration
	onTick    func(time.Duration)
	onExpire  func()

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// StartCountdown runs the countdown on ticks until it expires or Stop is
// called. step is subtracted per tick; onTick may be nil.
func StartCountdown(total, step time.Duration, ticks <-chan time.Time, onTick func(time.Duration), onExpire func()) *Countdown {
	c := &Countdown{
		remaining: total,
		step:      step,
		onTick:    onTick,
		onExpire:  onExpire,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go c.run(ticks)
	return c
}

// NewTicker returns a one-second wall-clock tick source and its stop func.
func NewTicker() (<-chan time.Time, func()) {
	t := time.NewTicker(time.Second)
	return t.C, t.Stop
}

func (c *Countdown) run(ticks <-chan time.Time) {
	defer close(c.done)
	for {
		select {
		case <-c.stop:
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			c.mu.Lock()
			c.remaining -= c.step
			if c.remaining < 0 {
				c.remaining = 0
			}
			left := c.remaining
			c.mu.Unlock()

			if c.onTick != nil {
				c.onTick(left)
			}
			if left == 0 {
				if c.onExpire != nil {
					c.onExpire()
				}
				return
			}
		}
	}
}

func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Stop halts the countdown. It is safe to call more than once and from
// inside onExpire.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Done is closed when the countdown goroutine exits.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// FormatRemaining renders d as m:ss.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
