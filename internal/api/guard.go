package api

import (
	"sync"

	"github.com/phrazzld/deckforge/internal/domain"
)

// RunGuard admits at most one run per section. Runs are not reentrant: a
// second run on the same section would interleave writes into the deck.
type RunGuard struct {
	mu     sync.Mutex
	active map[domain.SectionName]bool
}

// NewRunGuard creates an empty guard.
func NewRunGuard() *RunGuard {
	return &RunGuard{active: make(map[domain.SectionName]bool)}
}

// TryAcquire marks the section busy. It returns false if it already was.
func (g *RunGuard) TryAcquire(section domain.SectionName) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[section] {
		return false
	}
	g.active[section] = true
	return true
}

// Release marks the section idle.
func (g *RunGuard) Release(section domain.SectionName) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, section)
}

// Active reports whether the section is busy.
func (g *RunGuard) Active(section domain.SectionName) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active[section]
}
