package roastclient

import (
	"context"
	"time"
)

// startCountdown moves the client to StateRateLimited and decrements
// the remaining wait once per tick. A previous countdown, if any, is
// replaced. The count never drops below zero; at zero the client
// becomes Ready.
func (c *Client) startCountdown(seconds int) {
	if seconds < 0 {
		seconds = 0
	}

	c.mu.Lock()
	if c.cancelTimer != nil {
		c.cancelTimer()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelTimer = cancel
	c.state = StateRateLimited
	c.retryRemaining = seconds
	c.mu.Unlock()

	if seconds == 0 {
		c.finishCountdown(cancel)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.retryRemaining > 0 {
					c.retryRemaining--
				}
				remaining := c.retryRemaining
				done := remaining == 0
				c.mu.Unlock()

				if c.onTick != nil {
					c.onTick(remaining)
				}
				if done {
					c.finishCountdown(cancel)
					return
				}
			}
		}
	}()
}

// finishCountdown transitions to Ready once the wait has elapsed.
func (c *Client) finishCountdown(cancel context.CancelFunc) {
	cancel()
	c.mu.Lock()
	if c.state == StateRateLimited {
		c.state = StateReady
		c.retryRemaining = 0
	}
	if c.cancelTimer != nil {
		c.cancelTimer = nil
	}
	c.mu.Unlock()
}
