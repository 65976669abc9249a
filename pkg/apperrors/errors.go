package apperrors

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrArtworkNotFound means the requested artwork id is not in the
	// catalog. Expected control flow, not an infrastructure fault.
	ErrArtworkNotFound = errors.New("artwork not found")

	// ErrQuotaExceeded means the conversation already used its question
	// quota. Expected control flow, not an infrastructure fault.
	ErrQuotaExceeded = errors.New("question quota exceeded")

	// ErrUnknownPersona means no style exemplars were loaded for the artist.
	ErrUnknownPersona = errors.New("unknown persona")
)
