package lead

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spincrm/internal/domain/auth"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := setupTestService(t, StrictPolicy())
	h := NewHandler(svc)
	h.now = func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) }

	r := gin.New()
	protected := r.Group("/api/v1")
	protected.Use(func(c *gin.Context) {
		c.Set(auth.ContextKey, &auth.Session{UserID: "u1"})
		c.Next()
	})
	h.RegisterRoutes(protected)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeLead(t *testing.T, w *httptest.ResponseRecorder) Lead {
	t.Helper()
	var env struct {
		Data struct {
			Lead Lead `json:"lead"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data.Lead
}

func TestHandler_LeadPipeline(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodPost, "/api/v1/leads", `{"name":"Bob","phone":"555","status":"accepted"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bob := decodeLead(t, w)
	assert.Equal(t, StatusNew, bob.Status)
	base := "/api/v1/leads/" + bob.ID.String()

	w = do(r, http.MethodPost, base+"/accept", `{"service":"Web","price":"1000"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, StatusAccepted, decodeLead(t, w).Status)

	w = do(r, http.MethodPost, base+"/defer", `{"callback_time":"10:00"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")

	w = do(r, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, base+"/reject", "")
	require.Equal(t, http.StatusOK, w.Code)
	rejected := decodeLead(t, w)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "Web", *rejected.Service)
	assert.Nil(t, rejected.RejectionReason)

	w = do(r, http.MethodGet, "/api/v1/leads?status=rejected", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), bob.ID.String())

	w = do(r, http.MethodGet, "/api/v1/leads/export?status=rejected", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="leads_rejected_2026-10-14.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "Name,Company,Phone"))

	w = do(r, http.MethodDelete, base, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_LeadErrors(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodPost, "/api/v1/leads", `{"name":"Bob"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")

	w = do(r, http.MethodGet, "/api/v1/leads?status=won", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/leads/export", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/api/v1/leads/xyz/accept", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ID")
}
