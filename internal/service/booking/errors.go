package booking

import "errors"

var (
	// ErrInvalidRequest covers malformed input: non-positive quantity or
	// duration, duration below the facility minimum, unknown target status.
	ErrInvalidRequest = errors.New("invalid booking request")
	// ErrCapacityExceeded means the requested quantity exceeds the
	// facility's available capacity at creation time.
	ErrCapacityExceeded = errors.New("requested quantity exceeds available capacity")
	// ErrInsufficientCapacity means capacity dropped below the booking's
	// quantity between request and approval; the booking stays pending.
	ErrInsufficientCapacity = errors.New("insufficient capacity to approve booking")
	ErrInvalidTransition    = errors.New("invalid booking status transition")
	ErrForbidden            = errors.New("caller does not manage this facility")
	ErrFacilityNotFound     = errors.New("facility not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrRateLimited          = errors.New("rate limited")
)
