// Package data implements the storefront core: cart management, order
// assembly, review aggregation, and the catalog/account stores. It speaks
// only to store.Collection; HTTP concerns live in controllers.
package data

import "errors"

// Error kinds the boundary layer maps to status codes. Wrap with
// fmt.Errorf("...: %w", ...) to add detail; match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("duplicate")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("concurrent modification")
)
