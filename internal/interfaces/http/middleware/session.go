package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/legajos-penal/internal/domain/user"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

const sessionKey = "session"

// SessionMiddleware resolves the session cookie against the session store.
type SessionMiddleware struct {
	store      user.SessionStore
	cookieName string
	logger     logging.Logger
}

func NewSessionMiddleware(store user.SessionStore, cookieName string, logger logging.Logger) *SessionMiddleware {
	return &SessionMiddleware{store: store, cookieName: cookieName, logger: logger}
}

// RequireSession rejects requests without a live session with 401.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cookieName)
		if err != nil || token == "" {
			abort(c, http.StatusUnauthorized, errors.ErrorCodeMessage[errors.ErrCodeUnauthorized])
			return
		}
		sess, err := m.store.Get(c.Request.Context(), token)
		if err != nil {
			if !errors.IsNotFound(err) {
				m.logger.Error("session lookup failed",
					logging.Err(err),
					logging.String("request_id", GetRequestID(c)))
			}
			abort(c, http.StatusUnauthorized, errors.ErrorCodeMessage[errors.ErrCodeUnauthorized])
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// RequireRole rejects sessions lacking role with 403. It must run after
// RequireSession.
func RequireRole(role user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil || sess.Role != role {
			abort(c, http.StatusForbidden, errors.ErrorCodeMessage[errors.ErrCodeForbidden])
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session attached by RequireSession.
func CurrentSession(c *gin.Context) *user.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*user.Session)
	return sess
}

// SetSession attaches sess to the request (for handler tests).
func SetSession(c *gin.Context, sess *user.Session) {
	c.Set(sessionKey, sess)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
