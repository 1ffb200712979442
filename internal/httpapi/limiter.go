package httpapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyLimiter rate-limits per key (client address). Idle keys are dropped
// after idleTTL so the map does not grow without bound.
type KeyLimiter struct {
	mu      sync.Mutex
	m       map[string]*limiterEntry
	r       rate.Limit
	b       int
	idleTTL time.Duration
	calls   int
	now     func() time.Time
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewKeyLimiter allows perMinute events per key with the given burst.
func NewKeyLimiter(perMinute, burst int) *KeyLimiter {
	return &KeyLimiter{
		m:       make(map[string]*limiterEntry),
		r:       rate.Limit(float64(perMinute) / 60),
		b:       burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

func (kl *KeyLimiter) Allow(key string) bool {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := kl.now()
	kl.calls++
	if kl.calls%256 == 0 {
		kl.prune(now)
	}

	e, ok := kl.m[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(kl.r, kl.b)}
		kl.m[key] = e
	}
	e.seen = now
	return e.lim.AllowN(now, 1)
}

func (kl *KeyLimiter) prune(now time.Time) {
	for k, e := range kl.m {
		if now.Sub(e.seen) > kl.idleTTL {
			delete(kl.m, k)
		}
	}
}

func (kl *KeyLimiter) size() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.m)
}
