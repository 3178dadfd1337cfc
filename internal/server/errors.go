package server

import "errors"

// Sentinel errors returned by the stores, the session registry, and the
// authentication helpers. Handlers translate these into HTTP status codes;
// nothing below the handler layer writes a response.
var (
	// ErrInvalidCredentials is returned when no account matches the
	// presented email/secret/role triple.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized covers both a missing/invalid session token and a
	// token bound to the wrong role. The two cases are deliberately not
	// distinguishable by callers.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmailNotVerified is returned when a client logs in with valid
	// credentials before confirming their email address.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrNotFound is returned for lookups that match no record, e.g. an
	// unknown verification token.
	ErrNotFound = errors.New("not found")

	// ErrInvalidFileType is returned when an uploaded filename is outside
	// the allowed extension set.
	ErrInvalidFileType = errors.New("invalid file type")
)
