// Package indicators provides rolling technical indicators over close prices.
//
// Every indicator exists in two forms: a streaming type fed one value at a
// time, and a batch function over a slice that returns one output per input
// with NaN for positions inside the warm-up window.
package indicators

import "math"

// Indicator computes a single streaming value from closes.
// It is deterministic and safe to use in backtests and sweeps; it is not
// safe for concurrent use.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() is true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next close.
	Update(v float64)

	// Ready reports whether Value() is meaningful.
	Ready() bool

	// Value returns the current value, or NaN when !Ready().
	Value() float64
}

// Batch runs ind over values and returns one output per input. Outputs
// before the indicator is ready are NaN.
func Batch(ind Indicator, values []float64) []float64 {
	ind.Reset()
	out := make([]float64, len(values))
	for i, v := range values {
		ind.Update(v)
		if ind.Ready() {
			out[i] = ind.Value()
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// window is a fixed-capacity ring of the most recent values.
type window struct {
	buf   []float64
	next  int
	count int
}

func newWindow(n int) window {
	if n < 1 {
		n = 1
	}
	return window{buf: make([]float64, n)}
}

func (w *window) push(v float64) {
	w.buf[w.next] = v
	w.next = (w.next + 1) % len(w.buf)
	if w.count < len(w.buf) {
		w.count++
	}
}

func (w *window) full() bool { return w.count == len(w.buf) }

func (w *window) reset() {
	w.next, w.count = 0, 0
	for i := range w.buf {
		w.buf[i] = 0
	}
}

// each visits the held values oldest first.
func (w *window) each(fn func(v float64)) {
	start := (w.next - w.count + len(w.buf)) % len(w.buf)
	for i := 0; i < w.count; i++ {
		fn(w.buf[(start+i)%len(w.buf)])
	}
}

func (w *window) mean() float64 {
	if w.count == 0 {
		return math.NaN()
	}
	sum := 0.0
	w.each(func(v float64) { sum += v })
	return sum / float64(w.count)
}
