package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterStore hands out one token bucket per client IP. Idle entries
// are swept on access once they outlive the TTL.
type limiterStore struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int
	ttl     time.Duration
}

type clientLimiter struct {
	lim     *rate.Limiter
	lastHit time.Time
}

// newLimiterStore builds a store allowing perMinute requests per client
// with the given burst.
func newLimiterStore(perMinute, burst int, ttl time.Duration) *limiterStore {
	return &limiterStore{
		clients: make(map[string]*clientLimiter),
		rate:    rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		ttl:     ttl,
	}
}

func (s *limiterStore) allow(ip string) bool {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		ip = "unknown"
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	// lazy cleanup
	for k, v := range s.clients {
		if now.Sub(v.lastHit) > s.ttl {
			delete(s.clients, k)
		}
	}

	cl, ok := s.clients[ip]
	if !ok {
		cl = &clientLimiter{
			lim:     rate.NewLimiter(s.rate, s.burst),
			lastHit: now,
		}
		s.clients[ip] = cl
	}

	cl.lastHit = now
	return cl.lim.Allow()
}

// clientIP extracts the caller address. The router runs middleware.RealIP
// ahead of this, so RemoteAddr already reflects X-Forwarded-For when a
// proxy set it.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
