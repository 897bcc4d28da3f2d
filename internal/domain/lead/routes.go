package lead

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	leads := protected.Group("/leads")
	{
		leads.GET("", h.ListLeads)
		leads.POST("", h.CreateLead)
		leads.GET("/export", h.ExportLeads)
		leads.GET("/:id", h.GetLead)
		leads.DELETE("/:id", h.DeleteLead)
		leads.POST("/:id/accept", h.AcceptLead)
		leads.POST("/:id/defer", h.DeferLead)
		leads.POST("/:id/reject", h.RejectLead)
	}
}
