package report

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spincrm/internal/domain/client"
	"spincrm/internal/domain/lead"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0, CompletionRate(0, 0))
	assert.Equal(t, 100, CompletionRate(3, 3))
	assert.Equal(t, 33, CompletionRate(1, 3))
	assert.Equal(t, 67, CompletionRate(2, 3))
	assert.Equal(t, 50, CompletionRate(1, 2))

	for total := 1; total <= 20; total++ {
		for completed := 0; completed <= total; completed++ {
			r := CompletionRate(completed, total)
			assert.GreaterOrEqual(t, r, 0)
			assert.LessOrEqual(t, r, 100)
		}
	}
}

func TestSummarizeClients(t *testing.T) {
	past := now.Add(-24 * time.Hour)
	clients := []client.Client{
		{Status: client.StatusCompleted, Deadline: &past},
		{Status: client.StatusPending, Deadline: &past},
		{Status: client.StatusPending, StickyNotes: []client.StickyNote{{ID: "n1"}}},
		{Status: client.StatusPending},
	}

	s := SummarizeClients(clients, now)
	assert.Equal(t, ClientSummary{Total: 4, Completed: 1, Pending: 3, CompletionRate: 25, Urgent: 2}, s)
	assert.Equal(t, []NamedCount{{"Completed", 1}, {"Pending", 3}}, CompletionBreakdown(s))

	assert.Equal(t, ClientSummary{}, SummarizeClients(nil, now))
}

func TestWorkTypeHistogram(t *testing.T) {
	assert.Equal(t, []NamedCount{{"Software", 0}, {"Editing", 0}, {"Design", 0}}, WorkTypeHistogram(nil))

	clients := []client.Client{
		{WorkDetails: client.WorkDetails{Software: client.SoftwareWork{Selected: true}, Design: client.CategoryWork{Selected: true}}},
		{WorkDetails: client.WorkDetails{Software: client.SoftwareWork{Selected: true}}},
		{WorkDetails: client.WorkDetails{Editing: client.CategoryWork{Details: "not selected"}}},
	}
	assert.Equal(t, []NamedCount{{"Software", 2}, {"Editing", 0}, {"Design", 1}}, WorkTypeHistogram(clients))
}

func TestLeadStatusCounts(t *testing.T) {
	leads := []lead.Lead{
		{Status: lead.StatusNew}, {Status: lead.StatusNew},
		{Status: lead.StatusAccepted}, {Status: lead.StatusRejected},
	}
	assert.Equal(t, LeadCounts{All: 4, New: 2, Accepted: 1, Rejected: 1}, LeadStatusCounts(leads))
}

type staticClients []client.Client

func (s staticClients) Snapshot() []client.Client { return s }

type staticLeads []lead.Lead

func (s staticLeads) Snapshot() []lead.Lead { return s }

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(
		staticClients{{Status: client.StatusCompleted}, {Status: client.StatusPending}},
		staticLeads{{Status: lead.StatusPending}},
	)
	h.now = func() time.Time { return now }

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/clients", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"completion_rate":50`)
	assert.Contains(t, w.Body.String(), `{"name":"Software","count":0}`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/leads", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending":1`)
}
