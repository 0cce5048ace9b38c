package httpserver

import (
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Recover converts handler panics into 500 responses.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic",
						zap.Any("reason", rec),
						zap.ByteString("stack", debug.Stack()),
						zap.String("path", r.URL.Path),
					)
					writeError(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Logging emits one structured line per request, metadata only.
func Logging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("dur", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}

// Auth verifies the bearer JWT and stores the subject user id in the request
// context. Signing method is pinned to HMAC to block alg confusion.
func Auth(signKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims := jwt.RegisteredClaims{}
			tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return signKey, nil
			})
			if err != nil || !tok.Valid {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			userID, err := uuid.FromString(claims.Subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

type rlClient struct {
	lim  *rate.Limiter
	seen time.Time
}

// IPRateLimiter throttles requests per remote IP. Used on the open endpoints
// (register, login, password reset) only.
type IPRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*rlClient
	r         rate.Limit
	burst     int
	lastSweep time.Time
}

// NewIPRateLimiter constructs a limiter allowing rps sustained with burst.
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		clients:   make(map[string]*rlClient),
		r:         rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (rl *IPRateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.sweepLocked(time.Now())
	if c, ok := rl.clients[ip]; ok {
		c.seen = time.Now()
		return c.lim
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.clients[ip] = &rlClient{lim: l, seen: time.Now()}
	return l
}

// sweepLocked drops stale entries so the map does not grow unbounded. Runs at
// most once per minute, piggybacking on get; no background goroutine.
func (rl *IPRateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < time.Minute {
		return
	}
	rl.lastSweep = now
	for ip, c := range rl.clients {
		if now.Sub(c.seen) > 3*time.Minute {
			delete(rl.clients, ip)
		}
	}
}

// Limit wraps a handler with the per-IP limiter.
func (rl *IPRateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if i := strings.LastIndex(ip, ":"); i > 0 {
			ip = ip[:i]
		}
		if !rl.get(ip).Allow() {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	}
}
