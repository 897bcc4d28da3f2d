package lead

import "errors"

var (
	ErrLeadNotFound         = errors.New("lead not found")
	ErrNameAndPhoneRequired = errors.New("name and phone are required")
	ErrInvalidTransition    = errors.New("transition not allowed from current status")
	ErrCannotDelete         = errors.New("lead cannot be deleted in current status")
	ErrInvalidFilter        = errors.New("invalid status filter")
	ErrNothingToExport      = errors.New("no leads to export")
	ErrStaleWrite           = errors.New("lead was modified concurrently")
)
