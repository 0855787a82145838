package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const cleanupInterval = 5 * time.Minute

type ipEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// IPLimiter applies a per-client-IP token bucket; it guards the credential
// endpoints (register, login) against brute forcing.
type IPLimiter struct {
	mu      sync.Mutex
	entries map[string]*ipEntry
	rate    rate.Limit
	burst   int
	stopCh  chan struct{}
}

// NewIPLimiter allows perMin requests per minute with the given burst.
// A background loop evicts idle entries.
func NewIPLimiter(perMin, burst int) *IPLimiter {
	l := &IPLimiter{
		entries: make(map[string]*ipEntry),
		rate:    rate.Limit(float64(perMin) / 60.0),
		burst:   burst,
		stopCh:  make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

func (l *IPLimiter) Stop() {
	close(l.stopCh)
}

// Wrap limits a single handler rather than the whole router: only the
// unauthenticated credential endpoints need it.
func (l *IPLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		if !l.limiterFor(host).Allow() {
			w.Header().Set("Retry-After", "60")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			if err := json.NewEncoder(w).Encode(map[string]string{"message": "too many requests"}); err != nil {
				return
			}
			return
		}

		next(w, r)
	}
}

func (l *IPLimiter) limiterFor(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.entries[host]; ok {
		entry.lastAccess = time.Now()
		return entry.limiter
	}

	limiter := rate.NewLimiter(l.rate, l.burst)
	l.entries[host] = &ipEntry{limiter: limiter, lastAccess: time.Now()}
	return limiter
}

func (l *IPLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCh:
			return
		}
	}
}

func (l *IPLimiter) cleanup() {
	ttl := cleanupInterval * 2
	now := time.Now()

	l.mu.Lock()
	for host, entry := range l.entries {
		if now.Sub(entry.lastAccess) > ttl {
			delete(l.entries, host)
		}
	}
	l.mu.Unlock()
}
