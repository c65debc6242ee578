// Package booking orchestrates the booking lifecycle: it validates requests
// against current capacity, freezes price and cost at creation, and couples
// every status transition with its capacity-ledger effect inside a single
// unit of work.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
	"github.com/kisan-sangraha/sangraha-go/internal/pricing"
	redisx "github.com/kisan-sangraha/sangraha-go/internal/redis"
	"github.com/kisan-sangraha/sangraha-go/internal/repository"
	redisrepo "github.com/kisan-sangraha/sangraha-go/internal/repository/redis"
	"github.com/kisan-sangraha/sangraha-go/internal/uow"
)

type Service struct {
	store   repository.Store
	cache   *redisrepo.Cache
	pubsub  *redisx.FacilitiesPubSub
	limiter *redisrepo.SlidingWindowLimiter
	uow     *uow.UoW
	logger  *slog.Logger
}

func New(
	store repository.Store,
	cache *redisrepo.Cache,
	pubsub *redisx.FacilitiesPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:   store,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
		uow:     uow.New(store),
		logger:  logger,
	}
}

// CreateRequest is the validated input for a new booking.
type CreateRequest struct {
	FacilityID      string
	Quantity        int // kg
	Duration        int // days
	StorageCategory string
	StorageType     string
}

// Create validates a farmer's request and records a pending booking with a
// frozen price and total cost. Capacity is only provisionally checked here;
// nothing is reserved until the provider approves, so a flood of unapproved
// requests cannot starve real capacity.
func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateRequest,
	rlKey string,
) (*domain.Booking, error) {
	const op = "service.booking.Create"

	if req.FacilityID == "" || req.Quantity <= 0 || req.Duration <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidRequest)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s:%w: retry in %s", op, ErrRateLimited, retry)
		}
	}

	var created *domain.Booking

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		facility, err := tx.Facilities().Get(ctx, req.FacilityID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrFacilityNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		if req.Duration < facility.MinBookingDays {
			return fmt.Errorf("%s:%w: minimum booking is %d days",
				op, ErrInvalidRequest, facility.MinBookingDays)
		}

		if req.Quantity > facility.AvailableCapacity {
			return fmt.Errorf("%s:%w", op, ErrCapacityExceeded)
		}

		price := pricing.ResolvePrice(facility.PricePerKgPerDay, req.StorageCategory)
		now := time.Now()

		b := &domain.Booking{
			ID:               uuid.NewString(),
			UserID:           userID,
			FacilityID:       facility.ID,
			FacilityName:     facility.Name,
			FacilityLocation: facility.Location,
			Quantity:         req.Quantity,
			Duration:         req.Duration,
			StartDate:        now,
			EndDate:          now.AddDate(0, 0, req.Duration),
			PricePerKgPerDay: price,
			TotalCost:        pricing.TotalCost(req.Quantity, price, req.Duration),
			Status:           domain.BookingPending,
			StorageType:      req.StorageType,
			StorageCategory:  req.StorageCategory,
		}

		if err := tx.Bookings().Create(ctx, b); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// SetStatus executes a provider's status change. The transition check, its
// capacity effect and the status write commit as one atomic unit: on any
// failure, both the booking and the facility keep their prior state.
func (s *Service) SetStatus(
	ctx context.Context,
	actor domain.Identity,
	bookingID string,
	next domain.BookingStatus,
) (*domain.Booking, error) {
	const op = "service.booking.SetStatus"

	if !next.Valid() {
		return nil, fmt.Errorf("%s:%w: unknown status %q", op, ErrInvalidRequest, next)
	}

	var updated *domain.Booking

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		b, err := tx.Bookings().Get(ctx, bookingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrBookingNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		facility, err := tx.Facilities().Get(ctx, b.FacilityID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrFacilityNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		// unclaimed demo facilities are manageable by any provider
		if actor.Role != domain.RoleProvider ||
			(facility.OwnerID != "" && facility.OwnerID != actor.UserID) {
			return fmt.Errorf("%s:%w", op, ErrForbidden)
		}

		effect, err := domain.Transition(b.Status, next)
		if err != nil {
			return fmt.Errorf("%s:%w: %s -> %s", op, ErrInvalidTransition, b.Status, next)
		}

		switch effect {
		case domain.EffectReserve:
			if _, err := tx.Facilities().Reserve(ctx, facility.ID, b.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientCapacity) {
					return fmt.Errorf("%s:%w", op, ErrInsufficientCapacity)
				}
				return fmt.Errorf("%s:%w", op, err)
			}
		case domain.EffectRelease:
			_, clamped, err := tx.Facilities().Release(ctx, facility.ID, b.Quantity)
			if err != nil {
				return fmt.Errorf("%s:%w", op, err)
			}
			if clamped {
				// clamped release points at a double-cancellation bug
				s.logger.Warn("capacity release clamped at total",
					"facility_id", facility.ID,
					"booking_id", b.ID,
					"quantity", b.Quantity,
				)
			}
		}

		if err := tx.Bookings().UpdateStatus(ctx, b.ID, next); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		b.Status = next
		updated = b

		if effect != domain.EffectNone {
			facilityID := facility.ID
			after(func(ctx context.Context) {
				if s.cache != nil {
					_ = s.cache.InvalidateFacility(ctx, facilityID)
				}
				if s.pubsub != nil {
					_ = s.pubsub.PublishFacilityChanged(ctx, facilityID)
				}
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Get returns a booking to its farmer or to the provider owning the facility.
func (s *Service) Get(ctx context.Context, actor domain.Identity, bookingID string) (*domain.Booking, error) {
	const op = "service.booking.Get"

	b, err := s.store.Bookings().Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if b.UserID == actor.UserID {
		return b, nil
	}

	facility, err := s.store.Facilities().Get(ctx, b.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if actor.Role != domain.RoleProvider ||
		(facility.OwnerID != "" && facility.OwnerID != actor.UserID) {
		return nil, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	return b, nil
}

// ListForUser returns the caller's view of bookings: a farmer sees their own,
// a provider sees bookings against owned facilities. Newest first.
func (s *Service) ListForUser(ctx context.Context, actor domain.Identity) ([]domain.Booking, error) {
	const op = "service.booking.ListForUser"

	if actor.Role == domain.RoleProvider {
		owned, err := s.store.Facilities().List(ctx, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}

		ids := make([]string, 0, len(owned))
		for _, f := range owned {
			ids = append(ids, f.ID)
		}

		out, err := s.store.Bookings().ListByFacilities(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return out, nil
	}

	out, err := s.store.Bookings().ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	return out, nil
}
