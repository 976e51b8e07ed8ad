package docproc

import "errors"

var (
	// ErrNotConfigured indicates the document processing service has no
	// endpoint configured.
	ErrNotConfigured = errors.New("document processing service not configured")

	// ErrUnavailable indicates the document processing service could not be
	// reached or returned a server error.
	ErrUnavailable = errors.New("document processing service unavailable")
)
