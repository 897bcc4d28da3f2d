package client

import "time"

type CreateClientRequest struct {
	ClientName  string       `json:"client_name" validate:"notblank"`
	CompanyName string       `json:"company_name"`
	WorkDetails *WorkDetails `json:"work_details"`
	Deadline    *time.Time   `json:"deadline"`
}

// UpdateClientRequest carries only the descriptive fields. Nil means keep.
type UpdateClientRequest struct {
	ClientName      *string      `json:"client_name"`
	CompanyName     *string      `json:"company_name"`
	WorkDetails     *WorkDetails `json:"work_details"`
	Deadline        *time.Time   `json:"deadline"`
	ClearDeadline   bool         `json:"clear_deadline"`
	Status          *Status      `json:"status"`
	ExpectedVersion *int64       `json:"expected_version"`
}

type ProgressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

type NoteRequest struct {
	Message string `json:"message"`
}

type LogRequest struct {
	Message string `json:"message"`
}
