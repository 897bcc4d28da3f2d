package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrictPolicy(t *testing.T) {
	p := StrictPolicy()
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusNew, StatusAccepted, true},
		{StatusNew, StatusPending, true},
		{StatusNew, StatusRejected, true},
		{StatusPending, StatusPending, true},
		{StatusPending, StatusAccepted, true},
		{StatusAccepted, StatusAccepted, true},
		{StatusAccepted, StatusRejected, true},
		{StatusAccepted, StatusPending, false},
		{StatusRejected, StatusAccepted, false},
		{StatusRejected, StatusRejected, true},
		{StatusPending, StatusNew, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, p.CanDelete(StatusNew))
	assert.True(t, p.CanDelete(StatusRejected))
	assert.False(t, p.CanDelete(StatusAccepted))
	assert.False(t, p.CanDelete(StatusPending))
}

func TestOpenPolicy(t *testing.T) {
	p := OpenPolicy()
	for _, from := range Statuses {
		for _, to := range Statuses {
			assert.True(t, p.CanTransition(from, to))
		}
		assert.True(t, p.CanDelete(from))
	}
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]Filter{"": FilterAll, "all": FilterAll, "pending": "pending"} {
		got, ok := ParseFilter(in)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := ParseFilter("won")
	assert.False(t, ok)
}
