package lead

import "time"

type CreateLeadRequest struct {
	Name    string `json:"name" validate:"notblank"`
	Phone   string `json:"phone" validate:"notblank"`
	Company string `json:"company"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
	// Status is ignored; new leads always start as new.
	Status Status `json:"status"`
}

// Nil fields keep their stored value.
type AcceptRequest struct {
	Service      *string `json:"service"`
	Requirements *string `json:"requirements"`
	Price        *string `json:"price"`
}

type DeferRequest struct {
	CallbackDate *time.Time `json:"callback_date"`
	CallbackTime *string    `json:"callback_time"`
}

type RejectRequest struct {
	RejectionReason *string `json:"rejection_reason"`
}
