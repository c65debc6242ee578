package facility

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid facility request")
	// ErrPriceOutOfRange means a non-positive price; advisory category
	// bounds never block a provider, but zero and negative prices do.
	ErrPriceOutOfRange = errors.New("price must be positive")
	ErrForbidden       = errors.New("caller cannot manage this facility")
	ErrNotFound        = errors.New("facility not found")
)
