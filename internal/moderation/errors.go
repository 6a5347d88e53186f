package moderation

import (
	"errors"
	"fmt"
)

// Failure taxonomy surfaced to callers. The HTTP layer maps these to status
// codes; nothing below this package inspects them.
var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("permission denied")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("entity not in the required state")
	ErrValidation   = errors.New("validation failed")
)

// Validation errors all wrap ErrValidation so callers can match the class
// without enumerating each field error.
var (
	ErrTeamNameRequired       = fmt.Errorf("%w: team name is required", ErrValidation)
	ErrStreamerNameRequired   = fmt.Errorf("%w: streamer name is required", ErrValidation)
	ErrApplicationTypeInvalid = fmt.Errorf("%w: application type must be one of: streamer, caster, both", ErrValidation)
)
