package lead

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spincrm/internal/database"
)

func TestMongoRepository(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx := context.Background()
	db, err := database.ConnectMongo(ctx, uri, "crm_test_"+uuid.NewString()[:8], 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})

	svc := NewService(NewMongoRepository(db, database.CollectionLeads, 5*time.Second), StrictPolicy(), nil)

	l, err := svc.Create(ctx, nil, CreateLeadRequest{Name: "Bob", Phone: "555"})
	require.NoError(t, err)
	_, err = svc.Accept(ctx, l.ID, AcceptRequest{Service: strPtr("Web")})
	require.NoError(t, err)
	_, err = svc.Reject(ctx, l.ID, RejectRequest{RejectionReason: strPtr("budget")})
	require.NoError(t, err)

	rejected, err := svc.List(ctx, Filter(StatusRejected))
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, "Web", *rejected[0].Service)
	assert.Equal(t, int64(3), rejected[0].Version)

	require.NoError(t, svc.Delete(ctx, l.ID))
	_, err = svc.Get(ctx, l.ID)
	assert.ErrorIs(t, err, ErrLeadNotFound)
}
