// Package idgen issues creation-timestamp entity ids.
//
// Ids are Unix milliseconds so they double as the creation-order key, but a
// bare clock read collides when two entities are created within the same
// millisecond. The generator bumps past the last issued value to keep ids
// strictly increasing.
package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Generator issues strictly increasing millisecond ids.
type Generator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// New creates a Generator backed by the system clock.
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock creates a Generator with a custom clock source for tests.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next returns the next id: the current Unix millisecond, or last+1 when the
// clock has not advanced past the previously issued id.
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// NextImageID returns an image id of the form img-<ms>-<suffix>. Images keep
// the random suffix the other collections never had.
func (g *Generator) NextImageID() string {
	return fmt.Sprintf("img-%d-%s", g.Next(), uuid.NewString()[:8])
}
