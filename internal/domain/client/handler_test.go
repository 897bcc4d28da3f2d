package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spincrm/internal/domain/auth"
	"spincrm/internal/pkg/response"
)

func setupRouter(t *testing.T, role auth.Role) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _, _ := setupTestService(t)
	h := NewHandler(svc)

	r := gin.New()
	protected := r.Group("/api/v1")
	protected.Use(func(c *gin.Context) {
		sess := &auth.Session{UserID: "u1", Email: "ann@example.com", Role: role}
		c.Set(auth.ContextKey, sess)
		c.Set("role", string(role))
		c.Next()
	})
	adminOnly := func(c *gin.Context) {
		if c.GetString("role") != string(auth.RoleAdmin) {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
			return
		}
		c.Next()
	}
	h.RegisterRoutes(protected, adminOnly)
	return r, svc
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type clientEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Client Client `json:"client"`
	} `json:"data"`
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decodeClient(t *testing.T, w *httptest.ResponseRecorder) clientEnvelope {
	t.Helper()
	var env clientEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHandler_ClientLifecycle(t *testing.T) {
	r, _ := setupRouter(t, auth.RoleMember)

	w := do(r, http.MethodPost, "/api/v1/clients", `{"client_name":"Acme","work_details":{"software":{"selected":true,"subtypes":["website"]}}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeClient(t, w).Data.Client
	assert.Equal(t, "ann@example.com", created.CreatorName)
	base := "/api/v1/clients/" + created.ID.String()

	w = do(r, http.MethodPost, base+"/progress", `{"progress":40}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 40, decodeClient(t, w).Data.Client.Progress)

	w = do(r, http.MethodPost, base+"/progress", `{"progress":10}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "PROGRESS_REGRESSION", decodeClient(t, w).Error.Code)

	w = do(r, http.MethodPost, base+"/toggle-status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, StatusCompleted, decodeClient(t, w).Data.Client.Status)

	w = do(r, http.MethodPost, base+"/notes", `{"message":"call back"}`)
	require.Equal(t, http.StatusOK, w.Code)
	note := decodeClient(t, w).Data.Client.StickyNotes[0]

	w = do(r, http.MethodDelete, base+"/notes/"+note.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeClient(t, w).Data.Client.StickyNotes)

	w = do(r, http.MethodPost, base+"/logs", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPatch, base, `{"company_name":"Acme Corp","expected_version":1}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "STALE_WRITE", decodeClient(t, w).Error.Code)

	w = do(r, http.MethodPatch, base, `{"company_name":"Acme Corp"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acme Corp", decodeClient(t, w).Data.Client.CompanyName)

	w = do(r, http.MethodGet, "/api/v1/clients", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Acme Corp")

	w = do(r, http.MethodDelete, base, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ValidationErrors(t *testing.T) {
	r, _ := setupRouter(t, auth.RoleMember)

	w := do(r, http.MethodPost, "/api/v1/clients", `{"client_name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")

	w = do(r, http.MethodPost, "/api/v1/clients", `{"client_name":"X","work_details":{"software":{"subtypes":["desktop"]}}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")

	w = do(r, http.MethodPost, "/api/v1/clients", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_JSON")

	w = do(r, http.MethodGet, "/api/v1/clients/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ID")
}

func TestHandler_ResetRequiresAdmin(t *testing.T) {
	member, memberSvc := setupRouter(t, auth.RoleMember)
	c, err := memberSvc.Create(context.Background(), nil, CreateClientRequest{ClientName: "Acme"})
	require.NoError(t, err)

	w := do(member, http.MethodPost, "/api/v1/clients/"+c.ID.String()+"/progress/reset", `{"progress":0}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_AdminReset(t *testing.T) {
	admin, svc := setupRouter(t, auth.RoleAdmin)
	c, err := svc.Create(context.Background(), nil, CreateClientRequest{ClientName: "Acme"})
	require.NoError(t, err)
	_, err = svc.SetProgress(context.Background(), c.ID, 70)
	require.NoError(t, err)

	w := do(admin, http.MethodPost, "/api/v1/clients/"+c.ID.String()+"/progress/reset", `{"progress":10}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, decodeClient(t, w).Data.Client.Progress)
}
