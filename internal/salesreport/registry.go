package salesreport

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type registryEntry struct {
	mu       sync.Mutex
	board    *Board
	lastSeen time.Time
}

// Registry keeps one Board per operator. Each board is locked while a
// caller holds it so updates are applied one at a time.
type Registry struct {
	mu      sync.Mutex
	boards  map[string]*registryEntry
	idleTTL time.Duration
	now     func() time.Time
}

// NewRegistry builds a registry evicting boards idle for longer than idleTTL.
// A non-positive idleTTL disables eviction.
func NewRegistry(idleTTL time.Duration) *Registry {
	return &Registry{boards: make(map[string]*registryEntry), idleTTL: idleTTL, now: time.Now}
}

// Acquire locks the board for id, creating it when id is empty or unknown.
// It returns the effective id and a release func that must be called.
func (r *Registry) Acquire(id string) (string, *Board, func()) {
	r.mu.Lock()
	entry, ok := r.boards[id]
	if id == "" || !ok {
		id = uuid.NewString()
		entry = &registryEntry{board: NewBoard()}
		entry.board.now = r.now
		r.boards[id] = entry
	}
	entry.lastSeen = r.now()
	r.mu.Unlock()

	entry.mu.Lock()
	return id, entry.board, entry.mu.Unlock
}

// Len returns the number of live boards.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}

// Sweep evicts idle boards and returns how many were removed.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, entry := range r.boards {
		if entry.lastSeen.Before(cutoff) {
			delete(r.boards, id)
			removed++
		}
	}
	return removed
}
