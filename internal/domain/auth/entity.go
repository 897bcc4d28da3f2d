package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"spincrm/internal/pkg/jwt"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User holds the credentials behind a session.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Profile is the display record of a team member. Its ID equals the user ID.
type Profile struct {
	ID        string    `json:"id" db:"id" gorm:"type:varchar(36);primaryKey"`
	FullName  string    `json:"full_name" db:"full_name" gorm:"size:255"`
	Email     string    `json:"email" db:"email" gorm:"size:255"`
	Role      Role      `json:"role" db:"role" gorm:"type:varchar(16);not null;default:member"`
	Gender    string    `json:"gender" db:"gender" gorm:"size:16"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

// RevokedToken marks a signed-out JWT as unusable until it would have expired anyway.
type RevokedToken struct {
	JTI       string    `gorm:"column:jti;size:64;primaryKey"`
	UserID    string    `gorm:"size:36;not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

// Models lists the tables owned by this package, in migration order.
func Models() []any {
	return []any{&User{}, &Profile{}, &RevokedToken{}}
}

// Session is the authenticated identity resolved for one request.
// Profile is nil when it could not be fetched in time.
type Session struct {
	UserID  string      `json:"user_id"`
	Email   string      `json:"email"`
	Role    Role        `json:"role"`
	Profile *Profile    `json:"profile"`
	Claims  *jwt.Claims `json:"-"`
}

// CreatorName is the attribution written on records created in this session.
func (s *Session) CreatorName() string {
	if s == nil {
		return "Unknown User"
	}
	if s.Profile != nil && s.Profile.FullName != "" {
		return s.Profile.FullName
	}
	if s.Email != "" {
		return s.Email
	}
	return "Unknown User"
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

type Event struct {
	Type   EventType `json:"event"`
	UserID string    `json:"user_id"`
}

// TeamMember is a profile as shown in the team view.
type TeamMember struct {
	Profile
	AvatarSeed string `json:"avatar_seed"`
}

func avatarSeed(p Profile) string {
	if p.Gender == "Female" {
		return "Lola-" + p.Email
	}
	return "Felix-" + p.Email
}
