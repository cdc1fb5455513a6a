package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"go-market-auth/internal/event"
	"go-market-auth/internal/model"
	"go-market-auth/internal/ratelimit"
)

const rateLimitedMessage = "Too many requests, please try again later"

// anonymousKey is the shared bucket for requests whose client address
// cannot be determined. All such clients contend for one window, which
// is a known weak point of address-keyed throttling.
const anonymousKey = "anonymous"

// SensitiveRateLimit throttles an endpoint group through the
// fixed-window limiter. Limiter errors (a down Redis, for instance)
// fail closed with 503: an unprotected sensitive endpoint is worse
// than a briefly unavailable one.
func SensitiveRateLimit(limiter ratelimit.Limiter, bus *event.InMemoryBus) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractClientIP(r)

			allowed, err := limiter.Check(r.Context(), key)
			if err != nil {
				slog.Error("rate limiter unavailable", "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = jsonEncode(w, model.ErrorResponse{Error: "Service temporarily unavailable", Code: "INTERNAL_ERROR"})
				return
			}

			if !allowed {
				if bus != nil {
					bus.Emit(event.TypeRateLimitExceeded, "", key)
				}
				w.Header().Set("Retry-After", "60")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = jsonEncode(w, model.ErrorResponse{Error: rateLimitedMessage, Code: "RATE_LIMITED"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralRateLimit is the coarse per-client token bucket in front of
// the whole API, keeping one abusive client from starving the rest.
type GeneralRateLimit struct {
	rpm     int
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewGeneralRateLimit(rpm int) *GeneralRateLimit {
	if rpm <= 0 {
		rpm = 100
	}

	return &GeneralRateLimit{
		rpm:     rpm,
		clients: map[string]*clientLimiter{},
	}
}

func (m *GeneralRateLimit) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.getLimiter(extractClientIP(r)).Allow() {
			w.Header().Set("Retry-After", "60")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = jsonEncode(w, model.ErrorResponse{Error: rateLimitedMessage, Code: "RATE_LIMITED"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *GeneralRateLimit) getLimiter(clientIP string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, exists := m.clients[clientIP]; exists {
		client.lastSeen = time.Now()
		m.gcLocked()
		return client.limiter
	}

	created := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.rpm)), m.rpm),
		lastSeen: time.Now(),
	}
	m.clients[clientIP] = created
	m.gcLocked()

	return created.limiter
}

func (m *GeneralRateLimit) gcLocked() {
	if len(m.clients) < 1000 {
		return
	}

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range m.clients {
		if client.lastSeen.Before(cutoff) {
			delete(m.clients, ip)
		}
	}
}

func extractClientIP(r *http.Request) string {
	forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
			return strings.TrimSpace(parts[0])
		}
	}

	realIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}

	if strings.TrimSpace(r.RemoteAddr) != "" {
		return r.RemoteAddr
	}

	return anonymousKey
}
