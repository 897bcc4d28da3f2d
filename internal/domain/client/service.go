package client

import (
	"context"
	"fmt"
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

type Service struct {
	repo   Repository
	mirror *mirror.Mirror[Client]
	pub    Publisher
	now    func() time.Time
}

func NewService(repo Repository, pub Publisher) *Service {
	return &Service{
		repo:   repo,
		mirror: mirror.New(func(c Client) string { return c.ID.String() }),
		pub:    pub,
		now:    time.Now,
	}
}

// Snapshot returns the mirrored clients, newest first.
func (s *Service) Snapshot() []Client {
	return s.mirror.Snapshot()
}

// List reads every client and refreshes the mirror, unless a write landed
// while the rows were being read.
func (s *Service) List(ctx context.Context) ([]Client, error) {
	gen := s.mirror.Generation()
	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.mirror.ReplaceIf(gen, clients)
	return clients, nil
}

// Count is the number of mirrored clients.
func (s *Service) Count() int {
	return s.mirror.Len()
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, sess *auth.Session, req CreateClientRequest) (*Client, error) {
	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		return nil, ErrClientNameRequired
	}

	var work WorkDetails
	if req.WorkDetails != nil {
		work = *req.WorkDetails
	}
	var userID string
	if sess != nil {
		userID = sess.UserID
	}

	c := &Client{
		UserID:       userID,
		CreatorName:  sess.CreatorName(),
		ClientName:   name,
		CompanyName:  strings.TrimSpace(req.CompanyName),
		WorkDetails:  work.normalized(),
		Status:       StatusPending,
		Progress:     0,
		Deadline:     utcDate(req.Deadline),
		StickyNotes:  []StickyNote{},
		TimelineLogs: []TimelineLog{},
		Version:      1,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.mirror.Prepend(c.clone())
	s.publish("created", c)
	return c, nil
}

// Update merges the descriptive fields of req into the stored client.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*Client, error) {
	var name string
	if req.ClientName != nil {
		name = strings.TrimSpace(*req.ClientName)
		if name == "" {
			return nil, ErrClientNameRequired
		}
	}
	if req.Status != nil && *req.Status != StatusPending && *req.Status != StatusCompleted {
		return nil, ErrInvalidStatus
	}

	return s.mutate(ctx, id, req.ExpectedVersion, func(c *Client) (bool, error) {
		if req.ClientName != nil {
			c.ClientName = name
		}
		if req.CompanyName != nil {
			c.CompanyName = strings.TrimSpace(*req.CompanyName)
		}
		if req.WorkDetails != nil {
			c.WorkDetails = req.WorkDetails.normalized()
		}
		switch {
		case req.ClearDeadline:
			c.Deadline = nil
		case req.Deadline != nil:
			c.Deadline = utcDate(req.Deadline)
		}
		if req.Status != nil {
			c.Status = *req.Status
		}
		return true, nil
	})
}

// SetProgress raises progress and logs the change. Lowering is refused with
// ErrProgressRegression and leaves the client untouched.
func (s *Service) SetProgress(ctx context.Context, id uuid.UUID, value int) (*Client, error) {
	if value < 0 || value > 100 {
		return nil, ErrInvalidProgress
	}
	return s.mutate(ctx, id, nil, func(c *Client) (bool, error) {
		switch {
		case value < c.Progress:
			return false, ErrProgressRegression
		case value == c.Progress:
			return false, nil
		}
		s.prependLog(c, LogProgress, fmt.Sprintf("Progress updated from %d%% to %d%%", c.Progress, value))
		c.Progress = value
		return true, nil
	})
}

// ResetProgress sets progress to any value in range, lower included.
func (s *Service) ResetProgress(ctx context.Context, id uuid.UUID, value int) (*Client, error) {
	if value < 0 || value > 100 {
		return nil, ErrInvalidProgress
	}
	return s.mutate(ctx, id, nil, func(c *Client) (bool, error) {
		if value == c.Progress {
			return false, nil
		}
		s.prependLog(c, LogProgress, fmt.Sprintf("Progress reset from %d%% to %d%%", c.Progress, value))
		c.Progress = value
		return true, nil
	})
}

func (s *Service) ToggleStatus(ctx context.Context, id uuid.UUID) (*Client, error) {
	return s.mutate(ctx, id, nil, func(c *Client) (bool, error) {
		if c.Status == StatusCompleted {
			c.Status = StatusPending
		} else {
			c.Status = StatusCompleted
		}
		return true, nil
	})
}

// AddStickyNote prepends a note. A blank message changes nothing.
func (s *Service) AddStickyNote(ctx context.Context, id uuid.UUID, message string) (*Client, error) {
	message = strings.TrimSpace(message)
	return s.mutate(ctx, id, nil, func(c *Client) (bool, error) {
		if message == "" {
			return false, nil
		}
		note := StickyNote{ID: uuid.NewString(), Message: message, CreatedAt: s.now()}
		c.StickyNotes = append([]StickyNote{note}, c.StickyNotes...)
		return true, nil
	})
}

func (s *Service) DeleteStickyNote(ctx context.Context, id uuid.UUID, noteID string) (*Client, error) {
	return s.mutate(ctx, id, nil, func(c *Client) (bool, error) {
		kept := make([]StickyNote, 0, len(c.StickyNotes))
		for _, n := range c.StickyNotes {
			if n.ID != noteID {
				kept = append(kept, n)
			}
		}
		if len(kept) == len(c.StickyNotes) {
			return false, ErrNoteNotFound
		}
		c.StickyNotes = kept
		return true, nil
	})
}

func (s *Service) AddTimelineLog(ctx context.Context, id uuid.UUID, message string) (*Client, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrLogMessageRequired
	}
	return s.mutate(ctx, id, nil, func(c *Client) (bool, error) {
		s.prependLog(c, LogManual, message)
		return true, nil
	})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.mirror.Remove(id.String())
	if s.pub != nil {
		s.pub.Publish("client", "deleted", id.String(), nil)
	}
	return nil
}

// mutate loads the client, applies fn and writes the result guarded by the
// loaded version. fn returning false means nothing to write.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, expected *int64, fn func(c *Client) (bool, error)) (*Client, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if expected != nil && *expected != c.Version {
		return nil, ErrStaleWrite
	}

	loaded := c.Version
	changed, err := fn(c)
	if err != nil {
		return nil, err
	}
	if !changed {
		return c, nil
	}

	if err := s.repo.Update(ctx, c, loaded); err != nil {
		return nil, err
	}

	s.mirror.Upsert(c.clone())
	s.publish("updated", c)
	return c, nil
}

func (s *Service) prependLog(c *Client, typ LogType, message string) {
	entry := TimelineLog{ID: uuid.NewString(), Date: s.now(), Message: message, Type: typ}
	c.TimelineLogs = append([]TimelineLog{entry}, c.TimelineLogs...)
}

func (s *Service) publish(action string, c *Client) {
	if s.pub == nil {
		return
	}
	s.pub.Publish("client", action, c.ID.String(), c.clone())
}

// utcDate copies d in UTC. The SQLite driver cannot read back times stored
// with a numeric zone offset.
func utcDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	u := d.UTC()
	return &u
}
