package progression

import "sync"

// Unlocks remembers the most recent unlock override per track. It is
// written after a successful lesson-quiz completion and read whenever
// lesson states are derived.
type Unlocks struct {
	mu      sync.RWMutex
	byTrack map[string]string
}

// NewUnlocks creates an empty override registry.
func NewUnlocks() *Unlocks {
	return &Unlocks{byTrack: make(map[string]string)}
}

// Set records lessonID as the override for trackID. An empty lessonID
// clears the override.
func (u *Unlocks) Set(trackID, lessonID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if lessonID == "" {
		delete(u.byTrack, trackID)
		return
	}
	u.byTrack[trackID] = lessonID
}

// Get returns the override for trackID, or "". Safe on a nil receiver.
func (u *Unlocks) Get(trackID string) string {
	if u == nil {
		return ""
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.byTrack[trackID]
}

// Reset forgets every override.
func (u *Unlocks) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	clear(u.byTrack)
}
