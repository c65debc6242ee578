package booking

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
	"github.com/kisan-sangraha/sangraha-go/internal/repository/memory"
)

const (
	farmerID   = "farmer-1"
	providerID = "provider-1"
)

func newTestService(t *testing.T, facilities ...*domain.Facility) (*Service, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	ctx := context.Background()
	for _, f := range facilities {
		require.NoError(t, store.Facilities().Create(ctx, f))
	}

	svc := New(store, nil, nil, nil, slog.Default())
	return svc, store
}

func testFacility() *domain.Facility {
	return &domain.Facility{
		ID:                "fac-1",
		OwnerID:           providerID,
		Name:              "Sahyadri Cold Storage",
		Location:          "Nashik, Maharashtra",
		PricePerKgPerDay:  2.0,
		TotalCapacity:     1000,
		AvailableCapacity: 1000,
		MinBookingDays:    1,
	}
}

func provider() domain.Identity {
	return domain.Identity{UserID: providerID, Role: domain.RoleProvider}
}

func TestCreate_PendingBookingFreezesCostAndHoldsNoCapacity(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, testFacility())

	b, err := svc.Create(ctx, farmerID, CreateRequest{
		FacilityID:      "fac-1",
		Quantity:        100,
		Duration:        5,
		StorageCategory: "Fruits & Vegetables",
		StorageType:     "Cold",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, 2.0, b.PricePerKgPerDay)
	assert.Equal(t, 1000.0, b.TotalCost) // 100 * 2.0 * 5
	assert.Equal(t, "Sahyadri Cold Storage", b.FacilityName)
	assert.Equal(t, b.StartDate.AddDate(0, 0, 5), b.EndDate)

	// pending reserves nothing
	f, err := store.Facilities().Get(ctx, "fac-1")
	require.NoError(t, err)
	assert.Equal(t, 1000, f.AvailableCapacity)
}

func TestCreate_ResolvesCategoryDefaultWhenFacilityHasNoPrice(t *testing.T) {
	ctx := context.Background()
	noPrice := testFacility()
	noPrice.PricePerKgPerDay = 0
	svc, _ := newTestService(t, noPrice)

	b, err := svc.Create(ctx, farmerID, CreateRequest{
		FacilityID:      "fac-1",
		Quantity:        10,
		Duration:        2,
		StorageCategory: "Dairy Products",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, 2.0, b.PricePerKgPerDay)
	assert.Equal(t, 40.0, b.TotalCost)
}

func TestCreate_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	minTwo := testFacility()
	minTwo.MinBookingDays = 2
	svc, _ := newTestService(t, minTwo)

	cases := []CreateRequest{
		{FacilityID: "fac-1", Quantity: 0, Duration: 5},
		{FacilityID: "fac-1", Quantity: -10, Duration: 5},
		{FacilityID: "fac-1", Quantity: 10, Duration: 0},
		{FacilityID: "fac-1", Quantity: 10, Duration: 1}, // below facility minimum
		{FacilityID: "", Quantity: 10, Duration: 5},
	}

	for _, req := range cases {
		_, err := svc.Create(ctx, farmerID, req, "")
		assert.ErrorIs(t, err, ErrInvalidRequest, "%+v", req)
	}
}

func TestCreate_CapacityExceeded(t *testing.T) {
	ctx := context.Background()
	small := testFacility()
	small.AvailableCapacity = 50
	svc, store := newTestService(t, small)

	_, err := svc.Create(ctx, farmerID, CreateRequest{
		FacilityID: "fac-1",
		Quantity:   80,
		Duration:   3,
	}, "")
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// no booking record, no capacity change
	out, err := store.Bookings().ListByUser(ctx, farmerID)
	require.NoError(t, err)
	assert.Empty(t, out)

	f, err := store.Facilities().Get(ctx, "fac-1")
	require.NoError(t, err)
	assert.Equal(t, 50, f.AvailableCapacity)
}

func TestCreate_UnknownFacility(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Create(ctx, farmerID, CreateRequest{
		FacilityID: "ghost",
		Quantity:   10,
		Duration:   1,
	}, "")
	assert.ErrorIs(t, err, ErrFacilityNotFound)
}

func TestSetStatus_ApproveReservesCapacity(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, testFacility())

	b, err := svc.Create(ctx, farmerID, CreateRequest{
		FacilityID: "fac-1", Quantity: 100, Duration: 5,
	}, "")
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, provider(), b.ID, domain.BookingActive)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingActive, updated.Status)

	f, err := store.Facilities().Get(ctx, "fac-1")
	require.NoError(t, err)
	assert.Equal(t, 900, f.AvailableCapacity)
}

func TestSetStatus_CancelActiveReleasesCapacity(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, testFacility())

	b, err := svc.Create(ctx, farmerID, CreateRequest{
		FacilityID: "fac-1", Quantity: 100, Duration: 5,
	}, "")
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, provider(), b.ID, domain.BookingActive)
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, provider(), b.ID, domain.BookingCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, updated.Status)

	f, err := store.Facilities().Get(ctx, "fac-1")
	require.NoError(t, err)
	assert.Equal(t, 1000, f.AvailableCapacity)
}

func TestSetStatus_CancelPendingReleasesNothing(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, testFacility())

	b, err := svc.Create(ctx, farmerID, CreateRequest{
		FacilityID: "fac-1", Quantity: 100, Duration: 5,
	}, "")
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, provider(), b.ID, domain.BookingCancelled)
	require.NoError(t, err)

	f, err := store.Facilities().Get(ctx, "fac-1")
	require.NoError(t, err)
	assert.Equal(t, 1000, f.AvailableCapacity)
}

func TestSetStatus_CompleteKeepsCapacityConsumed(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, testFacility())

	b, err := svc.Create(ctx, farmerID, CreateRequest{
		FacilityID: "fac-1", Quantity: 100, Duration: 5,
	}, "")
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, provider(), b.ID, domain.BookingActive)
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, provider(), b.ID, domain.BookingCompleted)
	require.NoError(t, err)

	f, err := store.Facilities().Get(ctx, "fac-1")
	require.NoError(t, err)
	assert.Equal(t, 900, f.AvailableCapacity)
}

func TestSetStatus_TerminalIsTerminal(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, testFacility())

	b, err := svc.Create(ctx, farmerID, CreateRequest{
		FacilityID: "fac-1", Quantity: 100, Duration: 5,
	}, "")
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, provider(), b.ID, domain.BookingActive)
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, provider(), b.ID, domain.BookingCancelled)
	require.NoError(t, err)

	// a second cancellation must fail and leave everything unchanged
	_, err = svc.SetStatus(ctx, provider(), b.ID, domain.BookingCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := store.Bookings().Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)

	f, err := store.Facilities().Get(ctx, "fac-1")
	require.NoError(t, err)
	assert.Equal(t, 1000, f.AvailableCapacity)
}

func TestSetStatus_InsufficientCapacityKeepsBookingPending(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, testFacility())

	first, err := svc.Create(ctx, farmerID, CreateRequest{
		FacilityID: "fac-1", Quantity: 600, Duration: 5,
	}, "")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "farmer-2", CreateRequest{
		FacilityID: "fac-1", Quantity: 600, Duration: 5,
	}, "")
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, provider(), first.ID, domain.BookingActive)
	require.NoError(t, err)

	// only 400 left now; the second approval must be rejected atomically
	_, err = svc.SetStatus(ctx, provider(), second.ID, domain.BookingActive)
	assert.ErrorIs(t, err, ErrInsufficientCapacity)

	got, err := store.Bookings().Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status)

	f, err := store.Facilities().Get(ctx, "fac-1")
	require.NoError(t, err)
	assert.Equal(t, 400, f.AvailableCapacity)
}

func TestSetStatus_Authorization(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testFacility())

	b, err := svc.Create(ctx, farmerID, CreateRequest{
		FacilityID: "fac-1", Quantity: 100, Duration: 5,
	}, "")
	require.NoError(t, err)

	// the requesting farmer cannot change status
	_, err = svc.SetStatus(ctx, domain.Identity{UserID: farmerID, Role: domain.RoleFarmer}, b.ID, domain.BookingActive)
	assert.ErrorIs(t, err, ErrForbidden)

	// neither can a provider who owns a different facility
	_, err = svc.SetStatus(ctx, domain.Identity{UserID: "provider-2", Role: domain.RoleProvider}, b.ID, domain.BookingActive)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSetStatus_UnknownStatusAndBooking(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testFacility())

	_, err := svc.SetStatus(ctx, provider(), "nope", domain.BookingActive)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	b, err := svc.Create(ctx, farmerID, CreateRequest{
		FacilityID: "fac-1", Quantity: 10, Duration: 1,
	}, "")
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, provider(), b.ID, domain.BookingStatus("frozen"))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestConcurrentApprovals_AtMostOneWins(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &domain.Facility{
		ID:                "fac-1",
		OwnerID:           providerID,
		Name:              "Contended Storage",
		Location:          "Pune, Maharashtra",
		PricePerKgPerDay:  1.0,
		TotalCapacity:     100,
		AvailableCapacity: 100,
		MinBookingDays:    1,
	})

	first, err := svc.Create(ctx, "farmer-a", CreateRequest{
		FacilityID: "fac-1", Quantity: 60, Duration: 1,
	}, "")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "farmer-b", CreateRequest{
		FacilityID: "fac-1", Quantity: 60, Duration: 1,
	}, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = svc.SetStatus(ctx, provider(), id, domain.BookingActive)
		}(i, id)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientCapacity)
		}
	}
	assert.Equal(t, 1, winners, "exactly one of the two 60kg approvals can fit into 100kg")

	f, err := store.Facilities().Get(ctx, "fac-1")
	require.NoError(t, err)
	assert.Equal(t, 40, f.AvailableCapacity)
}

func TestListForUser_RoleViews(t *testing.T) {
	ctx := context.Background()
	other := testFacility()
	other.ID = "fac-2"
	other.OwnerID = "provider-2"
	svc, _ := newTestService(t, testFacility(), other)

	_, err := svc.Create(ctx, farmerID, CreateRequest{FacilityID: "fac-1", Quantity: 10, Duration: 1}, "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, farmerID, CreateRequest{FacilityID: "fac-2", Quantity: 10, Duration: 1}, "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "farmer-2", CreateRequest{FacilityID: "fac-1", Quantity: 10, Duration: 1}, "")
	require.NoError(t, err)

	mine, err := svc.ListForUser(ctx, domain.Identity{UserID: farmerID, Role: domain.RoleFarmer})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	// provider sees bookings against owned facilities only
	against, err := svc.ListForUser(ctx, provider())
	require.NoError(t, err)
	require.Len(t, against, 2)
	for _, b := range against {
		assert.Equal(t, "fac-1", b.FacilityID)
	}
}

func TestGet_ParticipantsOnly(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testFacility())

	b, err := svc.Create(ctx, farmerID, CreateRequest{FacilityID: "fac-1", Quantity: 10, Duration: 1}, "")
	require.NoError(t, err)

	_, err = svc.Get(ctx, domain.Identity{UserID: farmerID, Role: domain.RoleFarmer}, b.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, provider(), b.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, domain.Identity{UserID: "farmer-2", Role: domain.RoleFarmer}, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
