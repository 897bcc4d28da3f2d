package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spincrm/internal/domain/auth"
	"spincrm/internal/domain/client"
	"spincrm/internal/domain/feed"
	"spincrm/internal/domain/lead"
	"spincrm/internal/domain/report"
	"spincrm/internal/middleware"
)

// NewRouter mounts every HTTP endpoint. hub serves the dashboard socket.
func NewRouter(a *App, hub *feed.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(a.Config.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"store":   a.Config.StoreBackend,
			"clients": a.Clients.Count(),
			"leads":   a.Leads.Count(),
		})
	})

	authHandler := auth.NewHandler(a.Sessions)
	clientHandler := client.NewHandler(a.Clients)
	leadHandler := lead.NewHandler(a.Leads)
	reportHandler := report.NewHandler(a.Clients, a.Leads)
	feedHandler := feed.NewHandler(hub, a.Sessions, a.Config.CORSAllowedOrigins)

	v1 := r.Group("/api/v1")
	{
		// public; the socket authenticates with ?token=
		authHandler.RegisterPublicRoutes(v1)
		feedHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(a.Sessions))
		{
			authHandler.RegisterProtectedRoutes(protected)
			clientHandler.RegisterRoutes(protected, middleware.AdminOnly())
			leadHandler.RegisterRoutes(protected)
			reportHandler.RegisterRoutes(protected)
		}
	}
	return r
}
