package browser

import (
	"math/rand/v2"
	"time"
)

// Entropy spaces out UI actions with randomized pauses.
type Entropy struct {
	Randomize bool
	Min       time.Duration
	Max       time.Duration

	rnd *rand.Rand
}

// Delay returns the next pause. Without randomization it is always Min.
func (e *Entropy) Delay() time.Duration {
	if !e.Randomize || e.Max <= e.Min {
		return e.Min
	}
	return e.Min + time.Duration(e.float()*float64(e.Max-e.Min))
}

// Between returns a uniform duration in [lo, hi). It is used for the short
// fixed-range pauses, which are jittered even when Randomize is off.
func (e *Entropy) Between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(e.float()*float64(hi-lo))
}

func (e *Entropy) float() float64 {
	if e.rnd != nil {
		return e.rnd.Float64()
	}
	return rand.Float64()
}
