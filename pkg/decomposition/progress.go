package decomposition

import "sync"

// ProgressFunc receives a completion fraction in [0, 1]. Successive calls
// from one computation never decrease.
type ProgressFunc func(fraction float64)

// Weights of the three steps of one decomposition stage.
const (
	openingWeight = 0.4
	closingWeight = 0.4
	combineWeight = 0.2
)

// progress accumulates step weights inside a window [lo, lo+span] of the
// overall computation. Opening and closing finish in either order, so
// updates are serialised.
type progress struct {
	mu   sync.Mutex
	fn   ProgressFunc
	lo   float64
	span float64
	done float64
}

func newProgress(fn ProgressFunc, lo, span float64) *progress {
	return &progress{fn: fn, lo: lo, span: span}
}

func (p *progress) add(w float64) {
	if p == nil || p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done += w
	if p.done > 1 {
		p.done = 1
	}
	p.fn(p.lo + p.span*p.done)
}
