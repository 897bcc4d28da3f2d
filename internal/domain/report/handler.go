package report

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spincrm/internal/domain/client"
	"spincrm/internal/domain/lead"
	"spincrm/internal/pkg/response"
)

type clientSource interface {
	Snapshot() []client.Client
}

type leadSource interface {
	Snapshot() []lead.Lead
}

type Handler struct {
	clients clientSource
	leads   leadSource
	now     func() time.Time
}

func NewHandler(clients clientSource, leads leadSource) *Handler {
	return &Handler{clients: clients, leads: leads, now: time.Now}
}

func (h *Handler) Clients(c *gin.Context) {
	snapshot := h.clients.Snapshot()
	summary := SummarizeClients(snapshot, h.now())
	response.Success(c, http.StatusOK, gin.H{
		"summary":    summary,
		"work_types": WorkTypeHistogram(snapshot),
		"completion": CompletionBreakdown(summary),
	})
}

func (h *Handler) Leads(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"counts": LeadStatusCounts(h.leads.Snapshot()),
	})
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	analytics := protected.Group("/analytics")
	{
		analytics.GET("/clients", h.Clients)
		analytics.GET("/leads", h.Leads)
	}
}
