package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"spincrm/internal/pkg/response"
)

type Handler struct {
	sessions *Sessions
}

func NewHandler(sessions *Sessions) *Handler {
	return &Handler{sessions: sessions}
}

// Login godoc
// @Summary		Sign in
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	LoginRequest	true	"credentials"
// @Router		/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.sessions.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
			return
		}
		response.Internal(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session": result.Session,
		"tokens": gin.H{
			"access_token": result.Token,
			"expires_at":   result.ExpiresAt,
		},
	})
}

func (h *Handler) Logout(c *gin.Context) {
	sess := SessionFrom(c)
	if sess == nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	if err := h.sessions.SignOut(c.Request.Context(), sess); err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "signed_out"})
}

// GetSession returns the caller's identity and profile (null when unavailable).
func (h *Handler) GetSession(c *gin.Context) {
	sess := SessionFrom(c)
	if sess == nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	response.Success(c, http.StatusOK, sess)
}

func (h *Handler) Team(c *gin.Context) {
	members, err := h.sessions.ListProfiles(c.Request.Context())
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"members": members})
}
