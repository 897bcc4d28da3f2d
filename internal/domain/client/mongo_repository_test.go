package client

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

func setupMongoRepo(t *testing.T) *MongoRepository {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	db, err := database.ConnectMongo(context.Background(), uri, "crm_test_"+uuid.NewString()[:8], 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})
	return NewMongoRepository(db, database.CollectionClients, 5*time.Second)
}

func TestMongoRepository_VersionedUpdate(t *testing.T) {
	repo := setupMongoRepo(t)
	ctx := context.Background()

	c := &Client{ClientName: "Acme", Status: StatusPending, Version: 1, StickyNotes: []StickyNote{}, TimelineLogs: []TimelineLog{}}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.ClientName)

	got.Progress = 40
	require.NoError(t, repo.Update(ctx, got, 1))
	assert.Equal(t, int64(2), got.Version)

	c.CompanyName = "stale"
	assert.ErrorIs(t, repo.Update(ctx, c, 1), ErrStaleWrite)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 40, list[0].Progress)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), ErrNotFound)
	_, err = repo.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoRepository_ServiceScenario(t *testing.T) {
	svc := NewService(setupMongoRepo(t), nil)
	ctx := context.Background()

	c, err := svc.Create(ctx, nil, CreateClientRequest{ClientName: "Acme"})
	require.NoError(t, err)
	_, err = svc.SetProgress(ctx, c.ID, 40)
	require.NoError(t, err)
	_, err = svc.SetProgress(ctx, c.ID, 10)
	assert.ErrorIs(t, err, ErrProgressRegression)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Progress)
	assert.Len(t, got.TimelineLogs, 1)
}
