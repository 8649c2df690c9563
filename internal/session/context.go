package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/allwin2012/Hr.io/internal/domain"
	"github.com/allwin2012/Hr.io/internal/shared/apperror"
)

// Context is the single home of "who is logged in". It replaces ambient
// global lookups with an injected value: every read of the current principal
// routes through Current. Login installs a credential and (re)schedules the
// guard; guard expiry clears the context again.
type Context struct {
	mu        sync.RWMutex
	principal *domain.Principal
	token     string

	guard    *Guard
	onExpire func()
	logger   *zap.Logger
}

func NewContext(guard *Guard, logger ...*zap.Logger) *Context {
	l := zap.L().Named("session")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("session")
	}
	if guard == nil {
		guard = NewGuard()
	}
	return &Context{guard: guard, logger: l}
}

// OnExpire registers a callback invoked after an expiry-triggered logout has
// cleared the session, e.g. to demote the UI to an unauthenticated state.
func (c *Context) OnExpire(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpire = fn
}

// Login installs the credential and principal. A credential that is already
// expired is refused outright (fail-closed). Any previously scheduled expiry
// timer is cancelled before the new one is armed.
func (c *Context) Login(token string, principal domain.Principal) error {
	if IsExpired(token) {
		return apperror.ErrUnauthorized
	}

	c.mu.Lock()
	c.token = token
	p := principal
	c.principal = &p
	c.mu.Unlock()

	c.guard.Schedule(token, c.expire)
	c.logger.Info("session established",
		zap.String("principal_id", principal.ID),
		zap.String("role", string(principal.Role)),
	)
	return nil
}

// Logout clears the session and cancels the pending expiry timer.
func (c *Context) Logout() {
	c.guard.Cancel()
	c.clear()
	c.logger.Info("session cleared")
}

func (c *Context) expire() {
	c.clear()
	c.logger.Warn("session expired, auto logout")

	c.mu.RLock()
	fn := c.onExpire
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (c *Context) clear() {
	c.mu.Lock()
	c.principal = nil
	c.token = ""
	c.mu.Unlock()
}

// Current returns the authenticated principal, if any.
func (c *Context) Current() (domain.Principal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.principal == nil {
		return domain.Principal{}, false
	}
	return *c.principal, true
}

// Token returns the bearer credential for outgoing requests, or "" when
// unauthenticated. Suitable as an api.Client token source.
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}
