package canvas

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"mailcanvas/internal/models"
)

// Id namespaces. The prefix before the first "-" of an element id is
// persisted as its elementType.
const (
	KindTitle   = "title"
	KindContent = "content"
	KindImage   = "image"
)

// IDGenerator issues element ids of the form "<kind>-<unix millis>". Two ids
// issued in the same millisecond get consecutive values, so ids from one
// generator never collide.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator returns a generator driven by the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Observe advances the generator past any timestamp embedded in ids that
// already exist, e.g. elements seeded from a catalog entry or a saved record.
func (g *IDGenerator) Observe(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		_, suffix, _ := strings.Cut(id, "-")
		if n, err := strconv.ParseInt(suffix, 10, 64); err == nil && n > g.last {
			g.last = n
		}
	}
}

// Next returns a fresh id in the given namespace.
func (g *IDGenerator) Next(kind string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.now().UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return kind + "-" + strconv.FormatInt(n, 10)
}

// ElementType returns the id namespace of an element id, the part before
// the first "-".
func ElementType(id string) string {
	return models.IDPrefix(id)
}
