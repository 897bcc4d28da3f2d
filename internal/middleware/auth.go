package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"spincrm/internal/domain/auth"
	"spincrm/internal/pkg/response"
)

type sessionResolver interface {
	GetSession(ctx context.Context, token string) (*auth.Session, error)
}

// JWTAuth resolves the Bearer token into a session and stores it on the context
// under auth.ContextKey, together with "user_id" and "role".
func JWTAuth(sessions sessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		sess, err := sessions.GetSession(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) || errors.Is(err, auth.ErrTokenRevoked) {
				response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired")
				return
			}
			response.Internal(c, err)
			c.Abort()
			return
		}

		c.Set(auth.ContextKey, sess)
		c.Set("user_id", sess.UserID)
		c.Set("role", string(sess.Role))
		c.Next()
	}
}
