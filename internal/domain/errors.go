package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every operation error wraps exactly one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnparseable  = errors.New("unparseable payload")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrDeviceNotFound    = fmt.Errorf("device %w", ErrNotFound)
	ErrDeviceUnavailable = fmt.Errorf("device unavailable: %w", ErrInvalidState)
	ErrDuplicateSerial   = fmt.Errorf("serial number already registered: %w", ErrConflict)
	ErrRentalNotFound    = fmt.Errorf("rental %w", ErrNotFound)
	ErrAlreadyReturned   = fmt.Errorf("rental already returned: %w", ErrInvalidState)
	ErrJobNotFound       = fmt.Errorf("job %w", ErrNotFound)
	ErrAlreadyClaimed    = fmt.Errorf("job already claimed: %w", ErrConflict)
	ErrJobNotInProgress  = fmt.Errorf("job is not in progress: %w", ErrInvalidState)
)

// InvalidInput wraps a validation message in ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}
