package lead

import (
	"time"

	"github.com/google/uuid"
)

// Status represents lead status
type Status string

const (
	StatusNew      Status = "new"
	StatusAccepted Status = "accepted"
	StatusPending  Status = "pending"
	StatusRejected Status = "rejected"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusNew, StatusAccepted, StatusPending, StatusRejected}

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusAccepted, StatusPending, StatusRejected:
		return true
	}
	return false
}

// Filter selects leads by status; FilterAll matches every lead.
type Filter string

const FilterAll Filter = "all"

func ParseFilter(v string) (Filter, bool) {
	if v == "" || v == string(FilterAll) {
		return FilterAll, true
	}
	if Status(v).Valid() {
		return Filter(v), true
	}
	return "", false
}

func (f Filter) Matches(s Status) bool {
	return f == FilterAll || Status(f) == s
}

// Lead is a prospect in the qualification pipeline. The payload of each
// decision stays stored after the lead moves on.
type Lead struct {
	ID      uuid.UUID `db:"id" json:"id" gorm:"type:uuid;primaryKey"`
	UserID  string    `db:"user_id" json:"user_id" gorm:"size:36;index"`
	Name    string    `db:"name" json:"name" gorm:"size:255;not null"`
	Phone   string    `db:"phone" json:"phone" gorm:"size:64;not null"`
	Company string    `db:"company" json:"company" gorm:"size:255"`
	Email   string    `db:"email" json:"email" gorm:"size:255"`
	Address string    `db:"address" json:"address" gorm:"size:512"`
	Status  Status    `db:"status" json:"status" gorm:"type:varchar(16);not null;default:new;index"`

	// accepted
	Service      *string `db:"service" json:"service"`
	Requirements *string `db:"requirements" json:"requirements"`
	Price        *string `db:"price" json:"price"`

	// pending
	CallbackDate *time.Time `db:"callback_date" json:"callback_date"`
	CallbackTime *string    `db:"callback_time" json:"callback_time"`

	// rejected
	RejectionReason *string `db:"rejection_reason" json:"rejection_reason"`

	Version   int64     `db:"version" json:"version" gorm:"not null;default:1"`
	CreatedAt time.Time `db:"created_at" json:"created_at" gorm:"index"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}

func Models() []any {
	return []any{&Lead{}}
}
