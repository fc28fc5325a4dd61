package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdle is how long a client's failure limiter is kept after its last
// use. Idle limiters are swept at most once per limiterIdle.
const limiterIdle = 15 * time.Minute

type peerKey struct{}

// PeerAddr records the socket peer address of the request. It must run before
// chi's RealIP, which rewrites RemoteAddr from client-supplied headers;
// BasicAuth throttles on the recorded address.
func PeerAddr(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerKey{}, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BasicAuth guards every request with a single admin credential. Failed
// attempts are throttled per socket peer IP: once a client has used up its
// failure budget it gets 429 until the budget refills, even with the right
// credentials.
type BasicAuth struct {
	user     []byte
	password []byte
	perMin   int

	mu        sync.Mutex
	clients   map[string]*failureLimiter
	lastSweep time.Time
	now       func() time.Time
}

type failureLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewBasicAuth returns a BasicAuth accepting user/password and allowing
// failuresPerMinute failed attempts per client IP, with the same burst.
func NewBasicAuth(user, password string, failuresPerMinute int) *BasicAuth {
	if failuresPerMinute < 1 {
		failuresPerMinute = 1
	}
	return &BasicAuth{
		user:     []byte(user),
		password: []byte(password),
		perMin:   failuresPerMinute,
		clients:  make(map[string]*failureLimiter),
		now:      time.Now,
	}
}

// Handler is the middleware.
func (a *BasicAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := peerIP(r)
		lim := a.limiter(ip)
		if lim.TokensAt(a.now()) < 1 {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many failed login attempts")
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !a.valid(user, pass) {
			lim.AllowN(a.now(), 1)
			slog.WarnContext(r.Context(), "authentication failed", "peer_ip", ip, "remote_addr", r.RemoteAddr, "user", user)
			w.Header().Set("WWW-Authenticate", `Basic realm="registro", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized", "valid credentials are required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *BasicAuth) valid(user, pass string) bool {
	u := subtle.ConstantTimeCompare([]byte(user), a.user)
	p := subtle.ConstantTimeCompare([]byte(pass), a.password)
	return u&p == 1
}

func (a *BasicAuth) limiter(ip string) *rate.Limiter {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if now.Sub(a.lastSweep) > limiterIdle {
		for k, c := range a.clients {
			if now.Sub(c.lastSeen) > limiterIdle {
				delete(a.clients, k)
			}
		}
		a.lastSweep = now
	}
	c, ok := a.clients[ip]
	if !ok {
		c = &failureLimiter{lim: rate.NewLimiter(rate.Every(time.Minute/time.Duration(a.perMin)), a.perMin)}
		a.clients[ip] = c
	}
	c.lastSeen = now
	return c.lim
}

// peerIP returns the host part of the address recorded by PeerAddr, or of
// r.RemoteAddr when PeerAddr is not installed.
func peerIP(r *http.Request) string {
	addr, ok := r.Context().Value(peerKey{}).(string)
	if !ok {
		addr = r.RemoteAddr
	}
	return hostOf(addr)
}

// hostOf strips the port from a host:port address.
func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
