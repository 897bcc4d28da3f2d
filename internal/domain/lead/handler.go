package lead

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spincrm/internal/domain/auth"
	"spincrm/internal/pkg/response"
	"spincrm/internal/pkg/validator"
)

// Handler handles lead HTTP requests
type Handler struct {
	service *Service
	now     func() time.Time
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

// ListLeads godoc
// @Summary		List leads
// @Tags		Leads
// @Param		status	query	string	false	"all|new|accepted|pending|rejected"
// @Router		/leads [get]
func (h *Handler) ListLeads(c *gin.Context) {
	filter, ok := ParseFilter(c.Query("status"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", ErrInvalidFilter.Error())
		return
	}

	leads, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leads": leads, "filter": filter})
}

func (h *Handler) GetLead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	l, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": l})
}

func (h *Handler) CreateLead(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", ErrNameAndPhoneRequired.Error(), errs)
		return
	}

	l, err := h.service.Create(c.Request.Context(), auth.SessionFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"lead": l})
}

func (h *Handler) AcceptLead(c *gin.Context) {
	var req AcceptRequest
	h.decide(c, &req, func(id uuid.UUID) (*Lead, error) {
		return h.service.Accept(c.Request.Context(), id, req)
	})
}

func (h *Handler) DeferLead(c *gin.Context) {
	var req DeferRequest
	h.decide(c, &req, func(id uuid.UUID) (*Lead, error) {
		return h.service.Defer(c.Request.Context(), id, req)
	})
}

func (h *Handler) RejectLead(c *gin.Context) {
	var req RejectRequest
	h.decide(c, &req, func(id uuid.UUID) (*Lead, error) {
		return h.service.Reject(c.Request.Context(), id, req)
	})
}

// decide binds the optional payload into req and runs the transition.
func (h *Handler) decide(c *gin.Context, req any, run func(id uuid.UUID) (*Lead, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
			return
		}
	}

	l, err := run(id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": l})
}

func (h *Handler) DeleteLead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

// ExportLeads streams the filtered leads as a CSV attachment.
func (h *Handler) ExportLeads(c *gin.Context) {
	filter, ok := ParseFilter(c.Query("status"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", ErrInvalidFilter.Error())
		return
	}

	var buf bytes.Buffer
	name, err := h.service.Export(c.Request.Context(), filter, h.now(), &buf)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid lead ID")
		return uuid.Nil, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrLeadNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
	case errors.Is(err, ErrNameAndPhoneRequired):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrCannotDelete):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrStaleWrite):
		response.Error(c, http.StatusConflict, "STALE_WRITE", "Lead was modified by someone else, reload and retry")
	case errors.Is(err, ErrNothingToExport):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "No leads to export")
	default:
		response.Internal(c, err)
	}
}
