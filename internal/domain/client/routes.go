package client

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the client endpoints. adminOnly guards the progress reset.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	clients := protected.Group("/clients")
	{
		clients.GET("", h.List)
		clients.POST("", h.Create)
		clients.GET("/:id", h.Get)
		clients.PATCH("/:id", h.Update)
		clients.DELETE("/:id", h.Delete)
		clients.POST("/:id/progress", h.SetProgress)
		clients.POST("/:id/progress/reset", adminOnly, h.ResetProgress)
		clients.POST("/:id/toggle-status", h.ToggleStatus)
		clients.POST("/:id/notes", h.AddNote)
		clients.DELETE("/:id/notes/:noteId", h.DeleteNote)
		clients.POST("/:id/logs", h.AddLog)
	}
}
