package timing

import "time"

// TickerLimiter uses time.Ticker for simple, consistent frame timing.
// Less accurate than AdaptiveLimiter but never busy-waits.
type TickerLimiter struct {
	ticker *time.Ticker
}

func NewTickerLimiter() *TickerLimiter {
	return &TickerLimiter{ticker: time.NewTicker(FrameDuration())}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(FrameDuration())
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}

// NewLimiter returns the limiter registered under name: "adaptive", "ticker" or "none".
func NewLimiter(name string) (Limiter, bool) {
	switch name {
	case "adaptive", "":
		return NewAdaptiveLimiter(), true
	case "ticker":
		return NewTickerLimiter(), true
	case "none":
		return NewNoOpLimiter(), true
	}
	return nil, false
}
