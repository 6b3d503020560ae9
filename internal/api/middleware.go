package api

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/radarinvest/backend/pkg/logger"
)

const (
	throttleRate  = rate.Limit(10) // requests per second per client
	throttleBurst = 30
)

// clientLimiter tracks one token bucket per client IP. Entries idle for
// more than an hour are dropped on the next sweep.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter() *clientLimiter {
	cl := &clientLimiter{clients: make(map[string]*clientEntry)}
	go cl.sweep()
	return cl
}

func (cl *clientLimiter) allow(clientIP string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	entry, ok := cl.clients[clientIP]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(throttleRate, throttleBurst)}
		cl.clients[clientIP] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

func (cl *clientLimiter) sweep() {
	for range time.Tick(10 * time.Minute) {
		cl.mu.Lock()
		for ip, entry := range cl.clients {
			if time.Since(entry.lastSeen) > time.Hour {
				delete(cl.clients, ip)
			}
		}
		cl.mu.Unlock()
	}
}

// throttleMiddleware applies a per-client request rate limit.
func throttleMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	limiter := newClientLimiter()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				clientIP = r.RemoteAddr
			}

			if !limiter.allow(clientIP) {
				log.WithFields(map[string]interface{}{
					"client": clientIP,
					"path":   r.URL.Path,
				}).Warn("Request throttled")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
