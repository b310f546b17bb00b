package msdirect

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// DefaultUserAgents is the catalog rotated across extraction sessions.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36 Edg/118.0.2088.76",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// ErrEmptyCatalog is returned when a rotator is built without agents.
var ErrEmptyCatalog = errors.New("user agent catalog is empty")

// Rotator hands out user-agent strings over a shuffled permutation of its
// catalog: every agent is returned exactly once before any repeats, and the
// permutation is reshuffled once exhausted. One rotator is shared across all
// sessions so repeated invocations keep rotating instead of restarting.
type Rotator struct {
	mu   sync.Mutex
	pool []string
	next int
	rng  *rand.Rand
}

// NewRotator builds a rotator over the given catalog.
func NewRotator(agents []string) (*Rotator, error) {
	if len(agents) == 0 {
		return nil, ErrEmptyCatalog
	}
	r := &Rotator{
		pool: append([]string(nil), agents...),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	r.rng.Shuffle(len(r.pool), func(i, j int) { r.pool[i], r.pool[j] = r.pool[j], r.pool[i] })
	return r, nil
}

// Next returns the next agent in the current permutation.
func (r *Rotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent := r.pool[r.next]
	r.next++
	if r.next >= len(r.pool) {
		r.rng.Shuffle(len(r.pool), func(i, j int) { r.pool[i], r.pool[j] = r.pool[j], r.pool[i] })
		r.next = 0
	}
	return agent
}
