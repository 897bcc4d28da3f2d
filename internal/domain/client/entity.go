package client

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

type SoftwareSubtype string

const (
	SubtypeWebsite SoftwareSubtype = "website"
	SubtypeMobile  SoftwareSubtype = "mobile"
)

type LogType string

const (
	LogProgress LogType = "progress"
	LogManual   LogType = "manual"
)

// SoftwareWork is the software category of a client's work.
type SoftwareWork struct {
	Selected bool              `json:"selected" bson:"selected"`
	Details  string            `json:"details" bson:"details"`
	Subtypes []SoftwareSubtype `json:"subtypes" bson:"subtypes" validate:"dive,oneof=website mobile"`
}

type CategoryWork struct {
	Selected bool   `json:"selected" bson:"selected"`
	Details  string `json:"details" bson:"details"`
}

// WorkDetails has one fixed slot per work category.
type WorkDetails struct {
	Software SoftwareWork `json:"software" bson:"software"`
	Editing  CategoryWork `json:"editing" bson:"editing"`
	Design   CategoryWork `json:"design" bson:"design"`
}

func (w WorkDetails) normalized() WorkDetails {
	seen := make(map[SoftwareSubtype]bool, len(w.Software.Subtypes))
	subtypes := make([]SoftwareSubtype, 0, len(w.Software.Subtypes))
	for _, st := range w.Software.Subtypes {
		if !seen[st] {
			seen[st] = true
			subtypes = append(subtypes, st)
		}
	}
	w.Software.Subtypes = subtypes
	return w
}

type StickyNote struct {
	ID        string    `json:"id" bson:"id"`
	Message   string    `json:"message" bson:"message"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type TimelineLog struct {
	ID      string    `json:"id" bson:"id"`
	Date    time.Time `json:"date" bson:"date"`
	Message string    `json:"message" bson:"message"`
	Type    LogType   `json:"type" bson:"type"`
}

// Client is a project tracked for an end customer.
// StickyNotes and TimelineLogs are kept most recent first.
type Client struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       string        `json:"user_id" gorm:"size:36;index"`
	CreatorName  string        `json:"creator_name" gorm:"size:255"`
	ClientName   string        `json:"client_name" gorm:"size:255;not null"`
	CompanyName  string        `json:"company_name" gorm:"size:255"`
	WorkDetails  WorkDetails   `json:"work_details" gorm:"serializer:json"`
	Status       Status        `json:"status" gorm:"type:varchar(16);not null;default:pending;index"`
	Progress     int           `json:"progress" gorm:"not null;default:0"`
	Deadline     *time.Time    `json:"deadline"`
	StickyNotes  []StickyNote  `json:"sticky_notes" gorm:"serializer:json"`
	TimelineLogs []TimelineLog `json:"timeline_logs" gorm:"serializer:json"`
	Version      int64         `json:"version" gorm:"not null;default:1"`
	CreatedAt    time.Time     `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

func (c *Client) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// normalize replaces nil sequences loaded from the store with empty ones.
func (c *Client) normalize() {
	if c.StickyNotes == nil {
		c.StickyNotes = []StickyNote{}
	}
	if c.TimelineLogs == nil {
		c.TimelineLogs = []TimelineLog{}
	}
	if c.WorkDetails.Software.Subtypes == nil {
		c.WorkDetails.Software.Subtypes = []SoftwareSubtype{}
	}
}

// clone copies c deep enough that mutating the result never touches c.
func (c Client) clone() Client {
	out := c
	out.StickyNotes = append([]StickyNote(nil), c.StickyNotes...)
	out.TimelineLogs = append([]TimelineLog(nil), c.TimelineLogs...)
	out.WorkDetails.Software.Subtypes = append([]SoftwareSubtype(nil), c.WorkDetails.Software.Subtypes...)
	if c.Deadline != nil {
		d := *c.Deadline
		out.Deadline = &d
	}
	out.normalize()
	return out
}

// IsUrgent reports a non-completed client that is overdue or carries sticky notes.
func IsUrgent(c Client, now time.Time) bool {
	if c.Status == StatusCompleted {
		return false
	}
	overdue := c.Deadline != nil && c.Deadline.Before(now)
	return overdue || len(c.StickyNotes) > 0
}

func Models() []any {
	return []any{&Client{}}
}
