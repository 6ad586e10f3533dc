package application

import (
	"math/rand"
	"time"
)

// newSystemRand returns a time-seeded randomness source. The scheduler's
// single-slot guard serializes ticks, so the source is never used from two
// goroutines at once.
func newSystemRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
