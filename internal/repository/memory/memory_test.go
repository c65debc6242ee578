package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
	"github.com/kisan-sangraha/sangraha-go/internal/repository"
)

func newFacility(id string, total, available int) *domain.Facility {
	return &domain.Facility{
		ID:                id,
		Name:              "Test Storage " + id,
		Location:          "Nashik, Maharashtra",
		TotalCapacity:     total,
		AvailableCapacity: available,
		PricePerKgPerDay:  1.0,
		MinBookingDays:    1,
	}
}

func TestLedger_ReserveReleaseRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Facilities().Create(ctx, newFacility("f1", 1000, 700)))

	available, err := s.Facilities().Reserve(ctx, "f1", 200)
	require.NoError(t, err)
	assert.Equal(t, 500, available)

	available, clamped, err := s.Facilities().Release(ctx, "f1", 200)
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.Equal(t, 700, available)
}

func TestLedger_ReserveInsufficient(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Facilities().Create(ctx, newFacility("f1", 100, 50)))

	_, err := s.Facilities().Reserve(ctx, "f1", 80)
	assert.ErrorIs(t, err, repository.ErrInsufficientCapacity)

	// the failed reserve must not move the counter
	f, err := s.Facilities().Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 50, f.AvailableCapacity)
}

func TestLedger_ReserveUnknownFacility(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Facilities().Reserve(ctx, "ghost", 10)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLedger_ReleaseClampsAtTotal(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Facilities().Create(ctx, newFacility("f1", 100, 90)))

	available, clamped, err := s.Facilities().Release(ctx, "f1", 50)
	require.NoError(t, err)
	assert.True(t, clamped)
	assert.Equal(t, 100, available)
}

func TestLedger_SetAvailabilityClamps(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Facilities().Create(ctx, newFacility("f1", 100, 50)))

	available, err := s.Facilities().SetAvailability(ctx, "f1", 500)
	require.NoError(t, err)
	assert.Equal(t, 100, available)

	available, err = s.Facilities().SetAvailability(ctx, "f1", -5)
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}

func TestLedger_ConcurrentReservesNeverOvercommit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Facilities().Create(ctx, newFacility("f1", 1000, 1000)))

	const workers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Facilities().Reserve(ctx, "f1", 60); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, repository.ErrInsufficientCapacity)
			}
		}()
	}
	wg.Wait()

	// 1000/60 = 16 reserves fit
	assert.Equal(t, 16, succeeded)

	f, err := s.Facilities().Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 1000-16*60, f.AvailableCapacity)
	assert.GreaterOrEqual(t, f.AvailableCapacity, 0)
	assert.LessOrEqual(t, f.AvailableCapacity, f.TotalCapacity)
}

func TestRunTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Facilities().Create(ctx, newFacility("f1", 1000, 1000)))

	boom := errors.New("boom")
	err := s.RunTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Facilities().Reserve(ctx, "f1", 400); err != nil {
			return err
		}
		if err := tx.Bookings().UpdateStatus(ctx, "missing", domain.BookingActive); err == nil {
			t.Fatal("expected update of missing booking to fail")
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	f, err := s.Facilities().Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 1000, f.AvailableCapacity, "failed unit of work must leave capacity untouched")
}

func TestRunTx_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Facilities().Create(ctx, newFacility("f1", 1000, 1000)))

	err := s.RunTx(ctx, func(ctx context.Context, tx repository.Store) error {
		_, err := tx.Facilities().Reserve(ctx, "f1", 400)
		return err
	})
	require.NoError(t, err)

	f, err := s.Facilities().Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 600, f.AvailableCapacity)
}

func TestUsers_UsernameUnique(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Users().Create(ctx, &domain.User{ID: "u1", Username: "ramesh", Role: domain.RoleFarmer}))
	err := s.Users().Create(ctx, &domain.User{ID: "u2", Username: "ramesh", Role: domain.RoleProvider})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestFacilities_ListSortedByDistance(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, Seed(ctx, s))

	all, err := s.Facilities().List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Distance, all[i].Distance)
	}
}
