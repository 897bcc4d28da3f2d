package feed

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"spincrm/internal/domain/auth"
	"spincrm/internal/pkg/response"
)

type sessionResolver interface {
	GetSession(ctx context.Context, token string) (*auth.Session, error)
}

type Handler struct {
	hub      *Hub
	sessions sessionResolver
	upgrader websocket.Upgrader
}

// NewHandler accepts sockets from the given origins. An empty list allows any
// origin.
func NewHandler(hub *Hub, sessions sessionResolver, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// Dashboard upgrades to a WebSocket after resolving ?token=.
// Browsers cannot set headers on WebSocket requests, hence the query parameter.
func (h *Handler) Dashboard(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "token query parameter is required")
		return
	}
	sess, err := h.sessions.GetSession(c.Request.Context(), token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token is invalid or expired")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	h.hub.serve(conn, sess.UserID)
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/ws/dashboard", h.Dashboard)
}
