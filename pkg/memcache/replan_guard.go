// pkg/memcache/replan_guard.go
package memcache

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type ReplanGuard interface {
	// TryAcquire marks a replan for key as in flight. It returns false while
	// another replan for the key is running or its cooldown has not elapsed.
	TryAcquire(key string) bool

	// Release clears the in-flight flag; the cooldown keeps running.
	Release(key string)

	InFlight(key string) bool
}

type entry struct {
	limiter  *rate.Limiter
	inFlight bool
	lastUsed time.Time
}

type ReplanGuards struct {
	mu       sync.Mutex
	cooldown time.Duration
	now      func() time.Time
	data     map[string]*entry
}

func NewReplanGuards(cooldown time.Duration) *ReplanGuards {
	return &ReplanGuards{
		cooldown: cooldown,
		now:      time.Now,
		data:     make(map[string]*entry),
	}
}

func (g *ReplanGuards) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.prune(now)

	e, ok := g.data[key]
	if !ok {
		limit := rate.Inf
		if g.cooldown > 0 {
			limit = rate.Every(g.cooldown)
		}
		e = &entry{limiter: rate.NewLimiter(limit, 1)}
		g.data[key] = e
	}
	if e.inFlight {
		return false
	}
	if !e.limiter.AllowN(now, 1) {
		return false
	}
	e.inFlight = true
	e.lastUsed = now
	return true
}

func (g *ReplanGuards) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.data[key]; ok {
		e.inFlight = false
		e.lastUsed = g.now()
	}
}

func (g *ReplanGuards) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.data[key]
	return ok && e.inFlight
}

// prune drops idle entries whose cooldown has fully elapsed.
func (g *ReplanGuards) prune(now time.Time) {
	for k, e := range g.data {
		if !e.inFlight && now.Sub(e.lastUsed) > g.cooldown {
			delete(g.data, k)
		}
	}
}
