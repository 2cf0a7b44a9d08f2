package timing

import "time"

// Limiter controls frame rate timing for emulation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// The interpreter runs one instruction per CycleDuration and presents
// FrameRate frames per second. Both timers tick once per instruction.
const (
	CycleDuration  = 2 * time.Millisecond
	FrameRate      = 60
	CyclesPerFrame = int(time.Second / FrameRate / CycleDuration)
)

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(CyclesPerFrame) * CycleDuration
}
