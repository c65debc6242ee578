package facility

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
	"github.com/kisan-sangraha/sangraha-go/internal/repository/memory"
)

func providerIdentity() domain.Identity {
	return domain.Identity{UserID: "provider-1", Role: domain.RoleProvider}
}

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return New(store, nil, nil), store
}

func registerReq() RegisterRequest {
	return RegisterRequest{
		Name:             "Panchgani Agro Chill",
		Location:         "Satara, Maharashtra",
		Distance:         9.5,
		Type:             []string{"Cold"},
		PricePerKgPerDay: 0.9,
		TotalCapacity:    20000,
		ContactPhone:     "+91 90000 00000",
		OperatingHours:   "6:00 AM - 9:00 PM",
		MinBookingDays:   2,
	}
}

func TestRegister_ProviderOnly(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, domain.Identity{UserID: "farmer-1", Role: domain.RoleFarmer}, registerReq())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRegister_StartsFullyAvailable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	f, err := svc.Register(ctx, providerIdentity(), registerReq())
	require.NoError(t, err)
	assert.Equal(t, "provider-1", f.OwnerID)
	assert.Equal(t, 20000, f.TotalCapacity)
	assert.Equal(t, 20000, f.AvailableCapacity)
	assert.NotEmpty(t, f.ID)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	bad := registerReq()
	bad.TotalCapacity = 0
	_, err := svc.Register(ctx, providerIdentity(), bad)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	bad = registerReq()
	bad.PricePerKgPerDay = 0
	_, err = svc.Register(ctx, providerIdentity(), bad)
	assert.ErrorIs(t, err, ErrPriceOutOfRange)
}

func TestUpdate_RejectsNonPositivePrice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	f, err := svc.Register(ctx, providerIdentity(), registerReq())
	require.NoError(t, err)

	zero := 0.0
	_, err = svc.Update(ctx, providerIdentity(), f.ID, UpdateRequest{PricePerKgPerDay: &zero})
	assert.ErrorIs(t, err, ErrPriceOutOfRange)
}

func TestUpdate_AvailabilityOverrideClamps(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	f, err := svc.Register(ctx, providerIdentity(), registerReq())
	require.NoError(t, err)

	over := 50000
	updated, err := svc.Update(ctx, providerIdentity(), f.ID, UpdateRequest{AvailableCapacity: &over})
	require.NoError(t, err)
	assert.Equal(t, 20000, updated.AvailableCapacity, "override above total clamps to total")

	negative := -10
	updated, err = svc.Update(ctx, providerIdentity(), f.ID, UpdateRequest{AvailableCapacity: &negative})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.AvailableCapacity)
}

func TestUpdate_ShrinkingTotalReclampsAvailable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	f, err := svc.Register(ctx, providerIdentity(), registerReq())
	require.NoError(t, err)

	smaller := 5000
	updated, err := svc.Update(ctx, providerIdentity(), f.ID, UpdateRequest{TotalCapacity: &smaller})
	require.NoError(t, err)
	assert.Equal(t, 5000, updated.TotalCapacity)
	assert.Equal(t, 5000, updated.AvailableCapacity)
}

func TestUpdate_OwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	f, err := svc.Register(ctx, providerIdentity(), registerReq())
	require.NoError(t, err)

	price := 1.5
	_, err = svc.Update(ctx, domain.Identity{UserID: "provider-2", Role: domain.RoleProvider}, f.ID, UpdateRequest{PricePerKgPerDay: &price})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdate_UnclaimedFacilityEditableByProviders(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	require.NoError(t, memory.Seed(ctx, store))

	price := 1.1
	updated, err := svc.Update(ctx, providerIdentity(), "1", UpdateRequest{PricePerKgPerDay: &price})
	require.NoError(t, err)
	assert.Equal(t, 1.1, updated.PricePerKgPerDay)
}

func TestUpdate_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	price := 1.0
	_, err := svc.Update(ctx, providerIdentity(), "ghost", UpdateRequest{PricePerKgPerDay: &price})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPriceAdvisory(t *testing.T) {
	svc, _ := newTestService(t)

	in, min, max := svc.PriceAdvisory("Dairy Products", 2.0)
	assert.True(t, in)
	assert.Equal(t, 1.5, min)
	assert.Equal(t, 2.5, max)

	in, _, _ = svc.PriceAdvisory("Dairy Products", 9.0)
	assert.False(t, in)
}
