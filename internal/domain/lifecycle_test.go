package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition_AllowedPairs(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		effect   CapacityEffect
	}{
		{BookingPending, BookingActive, EffectReserve},
		{BookingPending, BookingCancelled, EffectNone},
		{BookingActive, BookingCompleted, EffectNone},
		{BookingActive, BookingCancelled, EffectRelease},
	}

	for _, tc := range cases {
		effect, err := Transition(tc.from, tc.to)
		assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.effect, effect, "%s -> %s", tc.from, tc.to)
	}
}

func TestTransition_RejectsEverythingElse(t *testing.T) {
	all := []BookingStatus{BookingPending, BookingActive, BookingCompleted, BookingCancelled}

	allowed := map[[2]BookingStatus]bool{
		{BookingPending, BookingActive}:    true,
		{BookingPending, BookingCancelled}: true,
		{BookingActive, BookingCompleted}:  true,
		{BookingActive, BookingCancelled}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			if allowed[[2]BookingStatus{from, to}] {
				continue
			}
			effect, err := Transition(from, to)
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
			assert.Equal(t, EffectNone, effect)
		}
	}
}

func TestTransition_TerminalStates(t *testing.T) {
	for _, from := range []BookingStatus{BookingCompleted, BookingCancelled} {
		for _, to := range []BookingStatus{BookingPending, BookingActive, BookingCompleted, BookingCancelled} {
			_, err := Transition(from, to)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
	}
}
