package auth

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"spincrm/internal/pkg/jwt"
)

type userStore interface {
	Create(ctx context.Context, u *User, p *Profile) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	DeleteExpiredRevocations(ctx context.Context, now time.Time) (int64, error)
}

type profileStore interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	SetRole(ctx context.Context, id string, role Role) error
}

type tokenService interface {
	GenerateToken(userID, role string) (string, *jwt.Claims, error)
	ValidateToken(token string) (*jwt.Claims, error)
}

// Sessions resolves tokens into sessions and notifies subscribers about sign-in
// and sign-out.
type Sessions struct {
	users          userStore
	profiles       profileStore
	tokens         tokenService
	profileTimeout time.Duration

	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(Event)
}

func NewSessions(users userStore, profiles profileStore, tokens tokenService, profileTimeout time.Duration) *Sessions {
	return &Sessions{
		users:          users,
		profiles:       profiles,
		tokens:         tokens,
		profileTimeout: profileTimeout,
		handlers:       make(map[int]func(Event)),
	}
}

type SignInResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Session   *Session  `json:"session"`
}

func (s *Sessions) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !checkPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	userID := u.ID.String()
	profile := s.fetchProfile(ctx, userID)
	role := RoleMember
	if profile != nil && profile.Role != "" {
		role = profile.Role
	}

	token, claims, err := s.tokens.GenerateToken(userID, string(role))
	if err != nil {
		return nil, err
	}

	sess := &Session{UserID: userID, Email: u.Email, Role: role, Profile: profile, Claims: claims}
	s.emit(Event{Type: EventSignedIn, UserID: userID})

	return &SignInResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, Session: sess}, nil
}

// SignOut revokes the token the session was resolved from.
func (s *Sessions) SignOut(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Claims == nil {
		return ErrUnauthorized
	}
	var expiresAt time.Time
	if sess.Claims.ExpiresAt != nil {
		expiresAt = sess.Claims.ExpiresAt.Time
	}
	if err := s.users.Revoke(ctx, sess.Claims.ID, sess.UserID, expiresAt); err != nil {
		return err
	}
	s.emit(Event{Type: EventSignedOut, UserID: sess.UserID})
	return nil
}

// GetSession validates token and loads the identity behind it. A profile that
// cannot be loaded leaves Session.Profile nil; it never fails the lookup.
func (s *Sessions) GetSession(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	revoked, err := s.users.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	return &Session{
		UserID:  claims.UserID,
		Email:   u.Email,
		Role:    Role(claims.Role),
		Profile: s.fetchProfile(ctx, claims.UserID),
		Claims:  claims,
	}, nil
}

func (s *Sessions) fetchProfile(ctx context.Context, userID string) *Profile {
	ctx, cancel := context.WithTimeout(ctx, s.profileTimeout)
	defer cancel()

	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		log.Printf("profile_fetch_failed user_id=%s timeout=%s error=%q", userID, s.profileTimeout, err.Error())
		return nil
	}
	return p
}

// OnAuthStateChange registers handler for sign-in/sign-out events. The returned
// func removes it; calling it more than once is harmless.
func (s *Sessions) OnAuthStateChange(handler func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.handlers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Sessions) emit(ev Event) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.handlers))
	for id := range s.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, s.handlers[id])
	}
	s.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// ListProfiles returns the team with avatar seeds.
func (s *Sessions) ListProfiles(ctx context.Context) ([]TeamMember, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TeamMember, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, TeamMember{Profile: p, AvatarSeed: avatarSeed(p)})
	}
	return out, nil
}

type CreateUserInput struct {
	Email    string
	Password string
	FullName string
	Gender   string
	Role     Role
}

// CreateUser registers credentials and the matching profile.
func (s *Sessions) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	role := in.Role
	if role == "" {
		role = RoleMember
	}
	if role != RoleAdmin && role != RoleMember {
		return nil, ErrInvalidRole
	}
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidCredentials
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{Email: email, PasswordHash: hash}
	p := &Profile{FullName: strings.TrimSpace(in.FullName), Email: email, Role: role, Gender: in.Gender}
	if err := s.users.Create(ctx, u, p); err != nil {
		return nil, err
	}
	return u, nil
}

// SetRole changes the role of the user with email. It applies from the next
// sign-in, since issued tokens keep the role they were signed with.
func (s *Sessions) SetRole(ctx context.Context, email string, role Role) (*User, error) {
	if role != RoleAdmin && role != RoleMember {
		return nil, ErrInvalidRole
	}
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if err := s.profiles.SetRole(ctx, u.ID.String(), role); err != nil {
		return nil, err
	}
	return u, nil
}

// CleanupRevoked removes revocation entries for tokens past their expiry.
func (s *Sessions) CleanupRevoked(ctx context.Context, now time.Time) (int64, error) {
	return s.users.DeleteExpiredRevocations(ctx, now)
}
