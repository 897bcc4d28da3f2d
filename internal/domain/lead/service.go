package lead

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"spincrm/internal/domain/auth"
	"spincrm/internal/pkg/mirror"
)

// Publisher receives committed changes, e.g. the dashboard feed.
type Publisher interface {
	Publish(entity, action, id string, payload any)
}

// Service handles lead business logic
type Service struct {
	repo   Repository
	policy Policy
	mirror *mirror.Mirror[Lead]
	pub    Publisher
}

func NewService(repo Repository, policy Policy, pub Publisher) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
		mirror: mirror.New(func(l Lead) string { return l.ID.String() }),
		pub:    pub,
	}
}

// Snapshot returns every mirrored lead, newest first.
func (s *Service) Snapshot() []Lead {
	return s.mirror.Snapshot()
}

// List reads leads matching filter. A full list also refreshes the mirror.
func (s *Service) List(ctx context.Context, filter Filter) ([]Lead, error) {
	gen := s.mirror.Generation()
	leads, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if filter == FilterAll {
		s.mirror.ReplaceIf(gen, leads)
	}
	return leads, nil
}

func (s *Service) Count() int {
	return s.mirror.Len()
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Lead, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new lead. The status is always new.
func (s *Service) Create(ctx context.Context, sess *auth.Session, req CreateLeadRequest) (*Lead, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, ErrNameAndPhoneRequired
	}

	l := &Lead{
		Name:    name,
		Phone:   phone,
		Company: strings.TrimSpace(req.Company),
		Email:   strings.TrimSpace(req.Email),
		Address: strings.TrimSpace(req.Address),
		Status:  StatusNew,
		Version: 1,
	}
	if sess != nil {
		l.UserID = sess.UserID
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	s.mirror.Prepend(*l)
	s.publish("created", l)
	return l, nil
}

func (s *Service) Accept(ctx context.Context, id uuid.UUID, req AcceptRequest) (*Lead, error) {
	return s.transition(ctx, id, StatusAccepted, func(l *Lead) {
		setString(&l.Service, req.Service)
		setString(&l.Requirements, req.Requirements)
		setString(&l.Price, req.Price)
	})
}

func (s *Service) Defer(ctx context.Context, id uuid.UUID, req DeferRequest) (*Lead, error) {
	return s.transition(ctx, id, StatusPending, func(l *Lead) {
		if req.CallbackDate != nil {
			d := req.CallbackDate.UTC()
			l.CallbackDate = &d
		}
		setString(&l.CallbackTime, req.CallbackTime)
	})
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID, req RejectRequest) (*Lead, error) {
	return s.transition(ctx, id, StatusRejected, func(l *Lead) {
		setString(&l.RejectionReason, req.RejectionReason)
	})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.policy.CanDelete(l.Status) {
		return ErrCannotDelete
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.mirror.Remove(id.String())
	if s.pub != nil {
		s.pub.Publish("lead", "deleted", id.String(), nil)
	}
	return nil
}

// Export writes the leads matching filter as CSV and returns the download name.
func (s *Service) Export(ctx context.Context, filter Filter, now time.Time, w io.Writer) (string, error) {
	leads, err := s.repo.List(ctx, filter)
	if err != nil {
		return "", err
	}
	if len(leads) == 0 {
		return "", ErrNothingToExport
	}
	if err := WriteCSV(w, leads); err != nil {
		return "", err
	}
	return ExportFileName(filter, now), nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to Status, apply func(l *Lead)) (*Lead, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanTransition(l.Status, to) {
		return nil, ErrInvalidTransition
	}

	loaded := l.Version
	apply(l)
	l.Status = to
	if err := s.repo.Update(ctx, l, loaded); err != nil {
		return nil, err
	}

	s.mirror.Upsert(*l)
	s.publish("updated", l)
	return l, nil
}

func (s *Service) publish(action string, l *Lead) {
	if s.pub == nil {
		return
	}
	s.pub.Publish("lead", action, l.ID.String(), *l)
}

func setString(dst **string, v *string) {
	if v == nil {
		return
	}
	cp := *v
	*dst = &cp
}
