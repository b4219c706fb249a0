package services

import "errors"

// Sentinel errors for the hierarchy core. Handlers map these to HTTP status
// codes with errors.Is: 404, 400, 400, 409, 409, 409, 403, 401 respectively.
var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidHierarchy  = errors.New("invalid hierarchy: the only valid nesting is sector > subsector > case record")
	ErrDuplicateName     = errors.New("an active sibling with this name already exists")
	ErrDuplicateIdentity = errors.New("an active record with this identity value already exists")
	ErrHasActiveChildren = errors.New("node still has active children")
	ErrForbidden         = errors.New("insufficient role for this operation")
	ErrUnauthorized      = errors.New("an authenticated actor is required")
)
