// Package repository defines the persistence contract the services depend
// on. Two implementations exist: a pgx-backed store for production and a
// mutex-guarded in-memory store for tests and demo seeding.
package repository

import (
	"context"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
)

// Facilities is the facility catalog plus the capacity ledger. Reserve,
// Release and SetAvailability are the only ways available capacity changes;
// each call persists before returning and is atomic with respect to
// concurrent ledger calls on the same facility.
type Facilities interface {
	Create(ctx context.Context, f *domain.Facility) error
	Get(ctx context.Context, id string) (*domain.Facility, error)
	// List returns facilities sorted by ascending distance. An empty
	// ownerID means no owner filter.
	List(ctx context.Context, ownerID string) ([]domain.Facility, error)
	// Update persists price, capacity totals and descriptive fields. It
	// does not touch AvailableCapacity; that belongs to the ledger calls.
	Update(ctx context.Context, f *domain.Facility) error

	// Reserve subtracts amount from available capacity. It fails with
	// ErrInsufficientCapacity when amount exceeds what is available, and
	// returns the new available capacity on success.
	Reserve(ctx context.Context, id string, amount int) (int, error)
	// Release adds amount back, clamped so available never exceeds total.
	// clamped reports whether the clamp fired (a likely double-release).
	Release(ctx context.Context, id string, amount int) (available int, clamped bool, err error)
	// SetAvailability overrides available capacity directly, clamped into
	// [0, total]. Used by providers adjusting stock outside bookings.
	SetAvailability(ctx context.Context, id string, newAvailable int) (int, error)
}

type Bookings interface {
	Create(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, id string) (*domain.Booking, error)
	// ListByUser returns a farmer's bookings, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	// ListByFacilities returns bookings against any of the given
	// facilities, newest first.
	ListByFacilities(ctx context.Context, facilityIDs []string) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error
}

type Users interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type Insights interface {
	Create(ctx context.Context, in *domain.Insight) error
	// List returns insights newest first.
	List(ctx context.Context) ([]domain.Insight, error)
}

// Store bundles the repositories behind one handle. RunTx runs fn against a
// transactional view of the same store: every read and write inside fn
// commits atomically, and any returned error rolls the whole unit back.
// Nested RunTx calls join the enclosing transaction.
type Store interface {
	Facilities() Facilities
	Bookings() Bookings
	Users() Users
	Insights() Insights

	RunTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
