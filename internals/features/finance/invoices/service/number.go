package service

import (
	"fmt"
	"sync/atomic"
	"time"
)

// NumberGenerator issues FAC-<year>-<unix millis> numbers. The millisecond part
// is strictly increasing inside the process even under concurrent calls.
type NumberGenerator struct {
	last atomic.Int64
	now  func() time.Time
}

func NewNumberGenerator(now func() time.Time) *NumberGenerator {
	if now == nil {
		now = time.Now
	}
	return &NumberGenerator{now: now}
}

func (g *NumberGenerator) Next() string {
	t := g.now()
	for {
		prev := g.last.Load()
		ms := t.UnixMilli()
		if ms <= prev {
			ms = prev + 1
		}
		if g.last.CompareAndSwap(prev, ms) {
			return fmt.Sprintf("FAC-%d-%d", t.Year(), ms)
		}
	}
}
