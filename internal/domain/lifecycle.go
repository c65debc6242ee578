package domain

import "errors"

// ErrInvalidTransition is returned when a status change is not reachable from
// the booking's current status.
var ErrInvalidTransition = errors.New("invalid booking status transition")

// CapacityEffect is the ledger operation paired with a status transition.
type CapacityEffect int

const (
	EffectNone CapacityEffect = iota
	// EffectReserve commits the booking's quantity against the facility.
	EffectReserve
	// EffectRelease frees the booking's quantity back to the facility.
	EffectRelease
)

// Transition validates a booking status change and reports the capacity
// effect the caller must apply atomically with the status write.
//
// A pending booking holds no capacity, so approving it reserves and
// rejecting it releases nothing. Completing an active booking keeps the
// capacity consumed for the historical record. Completed and cancelled are
// terminal.
func Transition(from, to BookingStatus) (CapacityEffect, error) {
	switch from {
	case BookingPending:
		switch to {
		case BookingActive:
			return EffectReserve, nil
		case BookingCancelled:
			return EffectNone, nil
		}
	case BookingActive:
		switch to {
		case BookingCompleted:
			return EffectNone, nil
		case BookingCancelled:
			return EffectRelease, nil
		}
	}
	return EffectNone, ErrInvalidTransition
}
