// Package session owns the browser credential: a bearer token persisted in a
// cookie, exchanged at login and resolved to a role on demand. It is the only
// writer of that cookie; views read the resolved role and nothing else.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/remontpro/frontdesk/internal/backend"
	"github.com/remontpro/frontdesk/internal/lifecycle"
	"github.com/remontpro/frontdesk/internal/models"
)

const CookieName = "frontdesk_token"

const cookieMaxAge = 12 * 60 * 60

type Manager struct {
	Backend *backend.Client
	Secure  bool
	TTL     time.Duration

	mu       sync.Mutex
	cache    map[string]entry
	inflight map[string]chan struct{}
}

type entry struct {
	user models.User
	role lifecycle.Role
	exp  time.Time
}

func NewManager(client *backend.Client, secure bool) *Manager {
	return &Manager{
		Backend:  client,
		Secure:   secure,
		TTL:      60 * time.Second,
		cache:    map[string]entry{},
		inflight: map[string]chan struct{}{},
	}
}

// Token returns the persisted credential, empty when the caller is anonymous.
func (m *Manager) Token(c *gin.Context) string {
	token, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return token
}

func (m *Manager) HasCredential(c *gin.Context) bool {
	return m.Token(c) != ""
}

// Login exchanges credentials for a bearer token. On rejection the backend's
// message is surfaced to the caller and nothing is persisted or cached.
func (m *Manager) Login(ctx context.Context, username, password string) (string, error) {
	token, err := m.Backend.Login(ctx, username, password)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// Issue persists the credential in the browser.
func (m *Manager) Issue(c *gin.Context, token string) {
	c.SetCookie(CookieName, token, cookieMaxAge, "/", "", m.Secure, true)
}

// Clear destroys the credential and drops its cached identity.
func (m *Manager) Clear(c *gin.Context) {
	token := m.Token(c)
	c.SetCookie(CookieName, "", -1, "/", "", m.Secure, true)
	if token == "" {
		return
	}
	m.mu.Lock()
	delete(m.cache, token)
	m.mu.Unlock()
}

// Resolve maps a credential to the user behind it. Results are cached per
// token with a TTL and concurrent resolutions of the same token share one
// fetch. Any failure, network or expired token alike, degrades silently to
// the anonymous role: a stale credential must never surface as an error.
func (m *Manager) Resolve(ctx context.Context, token string) (models.User, lifecycle.Role) {
	if token == "" {
		return models.User{}, lifecycle.RoleAnonymous
	}

	m.mu.Lock()
	if e, ok := m.cache[token]; ok && time.Now().Before(e.exp) {
		m.mu.Unlock()
		return e.user, e.role
	}
	if ch, ok := m.inflight[token]; ok {
		m.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return models.User{}, lifecycle.RoleAnonymous
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if e, ok := m.cache[token]; ok && time.Now().Before(e.exp) {
			return e.user, e.role
		}
		return models.User{}, lifecycle.RoleAnonymous
	}
	ch := make(chan struct{})
	m.inflight[token] = ch
	m.mu.Unlock()

	user, err := m.Backend.Me(ctx, token)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, token)
	close(ch)
	if err != nil {
		return models.User{}, lifecycle.RoleAnonymous
	}
	role := lifecycle.ParseRole(user.Role)
	if m.TTL > 0 {
		m.cache[token] = entry{user: user, role: role, exp: time.Now().Add(m.TTL)}
	}
	return user, role
}

// Current resolves the caller of an in-flight request.
func (m *Manager) Current(c *gin.Context) (models.User, lifecycle.Role) {
	return m.Resolve(c.Request.Context(), m.Token(c))
}
