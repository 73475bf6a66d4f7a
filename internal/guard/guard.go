package guard

import (
	"fmt"
	"sync"

	"github.com/omergehad405/EduMaster/internal/failure"
)

// Ticket identifies one request issued under a Guard.
type Ticket struct {
	Key string
	gen uint64
}

// Guard discards responses whose originating context is gone. Each Begin
// supersedes every earlier ticket; Deactivate invalidates all of them.
// The zero value is ready to use and inactive.
type Guard struct {
	mu     sync.Mutex
	key    string
	gen    uint64
	active bool
}

// Begin starts a request for key (typically a track or lesson id) and
// returns its ticket.
func (g *Guard) Begin(key string) Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	g.key = key
	g.active = true
	return Ticket{Key: key, gen: g.gen}
}

// Check returns nil when t is still the current ticket, and an error
// matching failure.ErrStale otherwise.
func (g *Guard) Check(t Ticket) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active || t.gen != g.gen || t.Key != g.key {
		return fmt.Errorf("response for %q: %w", t.Key, failure.ErrStale)
	}
	return nil
}

// Deactivate marks the owner as gone.
func (g *Guard) Deactivate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = false
}
