package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client ip. Buckets idle for
// longer than idleTTL are dropped on the next sweep.
type IPRateLimiter struct {
	ips       map[string]*visitor
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int, idleTTL time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		ips:       make(map[string]*visitor),
		rateLimit: r,
		burstRate: b,
		idleTTL:   idleTTL,
		now:       time.Now,
	}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	i.sweep(now)

	v, exists := i.ips[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(i.rateLimit, i.burstRate)}
		i.ips[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep runs at most once per idleTTL. Caller holds mu.
func (i *IPRateLimiter) sweep(now time.Time) {
	if i.idleTTL <= 0 || now.Sub(i.lastSweep) < i.idleTTL {
		return
	}
	i.lastSweep = now
	for ip, v := range i.ips {
		if now.Sub(v.lastSeen) > i.idleTTL {
			delete(i.ips, ip)
		}
	}
}

// TODO: move the per IP buckets to redis once more than one instance serves traffic
