package host

import (
	"sync/atomic"

	"github.com/zmlAEQ/bls-host/pkg/metrics"
)

// callLimiter caps concurrent boundary calls. Excess calls are rejected, not
// queued; max 0 disables the cap.
type callLimiter struct {
	max  int64
	open atomic.Int64
}

func newCallLimiter(max int) *callLimiter { return &callLimiter{max: int64(max)} }

// TryOpen claims a slot; it returns false when the cap is reached.
func (l *callLimiter) TryOpen(op string) bool {
	for {
		o := l.open.Load()
		if l.max > 0 && o >= l.max {
			metrics.Inc("host_rejected_total", map[string]string{"op": op})
			return false
		}
		if l.open.CompareAndSwap(o, o+1) {
			metrics.AddGauge("host_inflight", nil, 1)
			return true
		}
	}
}

// Close releases a slot claimed by TryOpen.
func (l *callLimiter) Close() {
	for {
		o := l.open.Load()
		if o <= 0 {
			return
		}
		if l.open.CompareAndSwap(o, o-1) {
			metrics.AddGauge("host_inflight", nil, -1)
			return
		}
	}
}

// InFlight returns the number of open calls.
func (l *callLimiter) InFlight() int64 { return l.open.Load() }
