package auth

import "github.com/gin-gonic/gin"

// ContextKey is the gin context key holding the request's *Session.
const ContextKey = "session"

// SessionFrom returns the session stored by the auth middleware, or nil.
func SessionFrom(c *gin.Context) *Session {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*Session)
	return sess
}
