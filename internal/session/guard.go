package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiresAt extracts the exp claim without verifying the signature. The
// client never holds the signing key; signature verification is the server's
// job. Decoding failures fail closed.
func expiresAt(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// ExpiresAt returns the credential's expiry instant. ok is false when the
// token is malformed or carries no exp claim.
func ExpiresAt(token string) (time.Time, bool) {
	return expiresAt(token)
}

// IsExpired reports whether the credential is unusable. A token with
// unparseable claims, or with a missing or past exp claim, is expired.
// Pure and total: malformed input is "expired", never an error.
func IsExpired(token string) bool {
	return isExpiredAt(token, time.Now())
}

func isExpiredAt(token string, now time.Time) bool {
	exp, ok := expiresAt(token)
	if !ok {
		return true
	}
	return !exp.After(now)
}

// CancelFunc cancels a pending expiry callback. Safe to call more than once.
type CancelFunc func()

// Guard owns the single auto-logout timer for the session. Every Schedule
// atomically cancels the previous timer, so credential refreshes can never
// leak duplicate callbacks. The guard only signals: it knows nothing about
// session storage or routing.
type Guard struct {
	mu    sync.Mutex
	timer *time.Timer
	now   func() time.Time
}

func NewGuard() *Guard {
	return &Guard{now: time.Now}
}

// Schedule arranges for onExpire to run when the credential lapses. An
// already-invalid credential fires onExpire on a zero-delay timer rather
// than synchronously, preserving caller control flow. The returned cancel
// stops this schedule; the guard's next Schedule cancels it too.
func (g *Guard) Schedule(token string, onExpire func()) CancelFunc {
	delay := time.Duration(0)
	if exp, ok := expiresAt(token); ok {
		if d := exp.Sub(g.now()); d > 0 {
			delay = d
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.timer != nil {
		g.timer.Stop()
	}
	t := time.AfterFunc(delay, onExpire)
	g.timer = t

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		t.Stop()
		if g.timer == t {
			g.timer = nil
		}
	}
}

// Cancel stops any pending expiry callback.
func (g *Guard) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
