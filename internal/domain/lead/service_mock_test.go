package lead

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, filter Filter) ([]Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Lead), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id uuid.UUID) (*Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// copy so the service cannot mutate the fixture
	l := *args.Get(0).(*Lead)
	return &l, args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, l *Lead) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, l *Lead, expectedVersion int64) error {
	args := m.Called(ctx, l, expectedVersion)
	if args.Error(0) == nil {
		l.Version = expectedVersion + 1
	}
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(entity, action, id string, payload any) {
	m.Called(entity, action, id, payload)
}

func TestDelete_StrictRefusesDecidedLead(t *testing.T) {
	repo := new(MockRepository)
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&Lead{ID: id, Status: StatusAccepted, Version: 2}, nil)

	svc := NewService(repo, StrictPolicy(), nil)
	err := svc.Delete(context.Background(), id)

	assert.ErrorIs(t, err, ErrCannotDelete)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDelete_PublishesAfterRemoval(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&Lead{ID: id, Status: StatusNew, Version: 1}, nil)
	repo.On("Delete", mock.Anything, id).Return(nil)
	pub.On("Publish", "lead", "deleted", id.String(), nil).Return()

	svc := NewService(repo, StrictPolicy(), pub)
	require.NoError(t, svc.Delete(context.Background(), id))

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestTransition_UpdatesWithLoadedVersion(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&Lead{ID: id, Name: "Bob", Status: StatusNew, Version: 3}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(l *Lead) bool {
		return l.Status == StatusRejected && l.RejectionReason != nil && *l.RejectionReason == "budget"
	}), int64(3)).Return(nil)
	pub.On("Publish", "lead", "updated", id.String(), mock.AnythingOfType("Lead")).Return()

	svc := NewService(repo, StrictPolicy(), pub)
	reason := "budget"
	l, err := svc.Reject(context.Background(), id, RejectRequest{RejectionReason: &reason})
	require.NoError(t, err)

	assert.Equal(t, int64(4), l.Version)
	require.Len(t, svc.Snapshot(), 1)
	assert.Equal(t, StatusRejected, svc.Snapshot()[0].Status)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestTransition_UpdateFailureSkipsMirrorAndFeed(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	id := uuid.New()
	boom := errors.New("connection reset")
	repo.On("Get", mock.Anything, id).Return(&Lead{ID: id, Status: StatusNew, Version: 1}, nil)
	repo.On("Update", mock.Anything, mock.Anything, int64(1)).Return(boom)

	svc := NewService(repo, StrictPolicy(), pub)
	_, err := svc.Accept(context.Background(), id, AcceptRequest{})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, svc.Snapshot())
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
