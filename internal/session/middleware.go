package session

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/telestore/telestore/internal/session/domain"
	"go.uber.org/zap"
)

const contextKey = "storefront.session"

// Scope is the per-request view of a session. Handlers mutate State and call
// Save before writing the response; flashes are drained at render time.
type Scope struct {
	Token string
	State *domain.State

	store   *Store
	manager *Manager
}

// Middleware resolves the visitor's session, creating an anonymous one
// lazily: no row is written until the first Save.
func Middleware(store *Store, manager *Manager, log *zap.Logger) gin.HandlerFunc {
	log = log.Named("session")
	return func(c *gin.Context) {
		scope := &Scope{store: store, manager: manager}

		if token, ok := manager.ReadToken(c); ok {
			state, err := store.Load(c.Request.Context(), token)
			switch {
			case err == nil:
				scope.Token = token
				scope.State = state
			case errors.Is(err, domain.ErrNotFound):
				// Stale cookie, fall through to a fresh session.
			default:
				log.Error("session load failed", zap.Error(err))
			}
		}

		if scope.State == nil {
			scope.Token = store.NewToken()
			scope.State = &domain.State{}
		}

		c.Set(contextKey, scope)
		c.Next()
	}
}

// FromContext returns the request's session scope. Panics when the middleware
// is not installed, which is a wiring bug.
func FromContext(c *gin.Context) *Scope {
	v, ok := c.Get(contextKey)
	if !ok {
		panic("session middleware not installed")
	}
	return v.(*Scope)
}

// Save persists the current state and refreshes the cookie.
func (s *Scope) Save(c *gin.Context) error {
	expiresAt, err := s.store.Save(c.Request.Context(), s.Token, s.State)
	if err != nil {
		return err
	}
	s.manager.Set(c, s.Token, expiresAt)
	return nil
}

// Destroy drops the session row and cookie. The scope is reset to a fresh
// anonymous state.
func (s *Scope) Destroy(c *gin.Context) error {
	if err := s.store.Destroy(c.Request.Context(), s.Token); err != nil {
		return err
	}
	s.manager.Clear(c)
	s.Token = s.store.NewToken()
	s.State = &domain.State{}
	return nil
}

// Flash queues a one-shot message.
func (s *Scope) Flash(level, message string) {
	s.State.Flashes = append(s.State.Flashes, domain.Flash{Level: level, Message: message})
}

// DrainFlashes returns queued flashes and clears them. The caller must Save
// for the drain to stick.
func (s *Scope) DrainFlashes() []domain.Flash {
	out := s.State.Flashes
	s.State.Flashes = nil
	return out
}
