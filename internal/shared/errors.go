package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates the request carries no valid principal.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the principal lacks sufficient privilege.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidReference indicates a role, permission, or user id that does not exist.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrInvalidInput indicates a malformed or contradictory request payload.
	ErrInvalidInput = errors.New("invalid input")
)
