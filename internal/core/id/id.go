// Package id provides UUIDv7 generation for clients, documents and lines.
// UUIDv7 is time-ordered, so newest-first listings follow primary key order.
package id

import (
	"github.com/google/uuid"

	"factura/internal/core/apperror"
)

// ID is a type alias for UUID, used across all entities.
type ID = uuid.UUID

// New generates a new UUIDv7 (time-ordered UUID).
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// ParseField parses an identifier received from a caller and reports a
// validation error naming the field when it is malformed.
func ParseField(field, s string) (ID, error) {
	v, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperror.NewValidation("invalid identifier").
			WithDetail("field", field).
			WithDetail("value", s)
	}
	return v, nil
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
