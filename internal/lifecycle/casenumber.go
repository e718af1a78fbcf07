package lifecycle

import (
	"fmt"
	"sync/atomic"
	"time"
)

// CaseNumberGenerator produces human-facing case numbers of the form
// CASE-<digits>. The millisecond timestamp carries a per-process monotonic
// tail so two reports created within the same millisecond still get
// distinct numbers.
type CaseNumberGenerator struct {
	clock func() time.Time
	seq   atomic.Uint64
}

// NewCaseNumberGenerator creates a generator using the given clock.
func NewCaseNumberGenerator(clock func() time.Time) *CaseNumberGenerator {
	if clock == nil {
		clock = time.Now
	}
	return &CaseNumberGenerator{clock: clock}
}

// Next returns the next case number.
func (g *CaseNumberGenerator) Next() string {
	millis := g.clock().UnixMilli()
	seq := g.seq.Add(1) % 1000
	return fmt.Sprintf("CASE-%d%03d", millis, seq)
}
