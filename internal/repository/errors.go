package repository

import (
	apperrors "github.com/spec-kit/ticket-intake/pkg/util"
)

// ErrNotFound is returned when a lookup finds no row. Callers use errors.Is
// to distinguish an absent record from a store outage.
var ErrNotFound = apperrors.NewNotFound("resource", nil)
