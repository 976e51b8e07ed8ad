package helpdesk

import "errors"

var (
	// ErrNotConfigured indicates the helpdesk domain or API key is missing.
	// Batch operations treat this as fatal and attempt nothing.
	ErrNotConfigured = errors.New("helpdesk service not configured")

	// ErrTicketNotFound indicates the external system does not recognize the
	// requested ticket id.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrCompanyNotFound indicates the external system does not recognize the
	// requested company id.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrUnavailable indicates the helpdesk API could not be reached or
	// answered with a server error.
	ErrUnavailable = errors.New("helpdesk service unavailable")
)
