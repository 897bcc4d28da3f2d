// Package report computes dashboard figures from client and lead snapshots.
// Every function is pure; callers pass the snapshot and the clock.
package report

import (
	"math"
	"time"

	"spincrm/internal/domain/client"
	"spincrm/internal/domain/lead"
)

type ClientSummary struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completion_rate"`
	Urgent         int `json:"urgent"`
}

type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type LeadCounts struct {
	All      int `json:"all"`
	New      int `json:"new"`
	Accepted int `json:"accepted"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}

func SummarizeClients(clients []client.Client, now time.Time) ClientSummary {
	s := ClientSummary{Total: len(clients)}
	for _, c := range clients {
		if c.Status == client.StatusCompleted {
			s.Completed++
		} else {
			s.Pending++
		}
		if client.IsUrgent(c, now) {
			s.Urgent++
		}
	}
	s.CompletionRate = CompletionRate(s.Completed, s.Total)
	return s
}

// CompletionRate is completed/total as a rounded percentage, 0 for no clients.
func CompletionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// WorkTypeHistogram counts selected categories, always in the order
// Software, Editing, Design.
func WorkTypeHistogram(clients []client.Client) []NamedCount {
	out := []NamedCount{{Name: "Software"}, {Name: "Editing"}, {Name: "Design"}}
	for _, c := range clients {
		if c.WorkDetails.Software.Selected {
			out[0].Count++
		}
		if c.WorkDetails.Editing.Selected {
			out[1].Count++
		}
		if c.WorkDetails.Design.Selected {
			out[2].Count++
		}
	}
	return out
}

func LeadStatusCounts(leads []lead.Lead) LeadCounts {
	counts := LeadCounts{All: len(leads)}
	for _, l := range leads {
		switch l.Status {
		case lead.StatusNew:
			counts.New++
		case lead.StatusAccepted:
			counts.Accepted++
		case lead.StatusPending:
			counts.Pending++
		case lead.StatusRejected:
			counts.Rejected++
		}
	}
	return counts
}

// CompletionBreakdown is the data behind the completion chart.
func CompletionBreakdown(s ClientSummary) []NamedCount {
	return []NamedCount{
		{Name: "Completed", Count: s.Completed},
		{Name: "Pending", Count: s.Pending},
	}
}
