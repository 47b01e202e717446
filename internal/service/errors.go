// Package service implements the business logic between the HTTP API and
// the store: sales lifecycle, commission calculation, receipt uploads,
// spreadsheet export, and the canned assistant.
package service

import "errors"

// Sentinel errors the API layer maps to HTTP statuses.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)
