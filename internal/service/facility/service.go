// Package facility manages the storage catalog: provider registration,
// price/capacity edits and the read side farmers browse. Capacity overrides
// go through the ledger so the available/total invariant holds here too.
package facility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
	"github.com/kisan-sangraha/sangraha-go/internal/pricing"
	redisx "github.com/kisan-sangraha/sangraha-go/internal/redis"
	"github.com/kisan-sangraha/sangraha-go/internal/repository"
	redisrepo "github.com/kisan-sangraha/sangraha-go/internal/repository/redis"
	"github.com/kisan-sangraha/sangraha-go/internal/uow"
)

const (
	listCacheTTL = 30 * time.Second
	itemCacheTTL = 60 * time.Second
)

type Service struct {
	store  repository.Store
	cache  *redisrepo.Cache
	pubsub *redisx.FacilitiesPubSub
	uow    *uow.UoW
}

func New(
	store repository.Store,
	cache *redisrepo.Cache,
	pubsub *redisx.FacilitiesPubSub,
) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.New(store),
	}
}

// List returns facilities by ascending distance. The unfiltered catalog is
// served through the cache; owner-filtered views always hit the store.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.Facility, error) {
	const op = "service.facility.List"

	load := func(ctx context.Context) ([]domain.Facility, error) {
		return s.store.Facilities().List(ctx, ownerID)
	}

	if s.cache == nil || ownerID != "" {
		out, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return out, nil
	}

	out, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyFacilityList(), listCacheTTL, load)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Facility, error) {
	const op = "service.facility.Get"

	load := func(ctx context.Context) (*domain.Facility, error) {
		f, err := s.store.Facilities().Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return f, nil
	}

	if s.cache == nil {
		f, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return f, nil
	}

	f, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyFacility(id), itemCacheTTL, load)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	return f, nil
}

// RegisterRequest is the validated input for a new facility.
type RegisterRequest struct {
	Name             string
	Location         string
	Distance         float64
	Type             []string
	PricePerKgPerDay float64
	TotalCapacity    int
	ContactPhone     string
	OperatingHours   string
	MinBookingDays   int
	Certifications   []string
	Amenities        []string
	ImageURL         string
}

// Register creates a facility owned by the acting provider. A fresh facility
// starts with its full capacity available.
func (s *Service) Register(ctx context.Context, actor domain.Identity, req RegisterRequest) (*domain.Facility, error) {
	const op = "service.facility.Register"

	if actor.Role != domain.RoleProvider {
		return nil, fmt.Errorf("%s:%w", op, ErrForbidden)
	}
	if req.Name == "" || req.Location == "" || req.TotalCapacity <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidRequest)
	}
	if req.PricePerKgPerDay <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrPriceOutOfRange)
	}
	if req.MinBookingDays <= 0 {
		req.MinBookingDays = 1
	}

	f := &domain.Facility{
		ID:                uuid.NewString(),
		OwnerID:           actor.UserID,
		Name:              req.Name,
		Location:          req.Location,
		Distance:          req.Distance,
		Type:              req.Type,
		PricePerKgPerDay:  req.PricePerKgPerDay,
		TotalCapacity:     req.TotalCapacity,
		AvailableCapacity: req.TotalCapacity,
		Certifications:    req.Certifications,
		ContactPhone:      req.ContactPhone,
		OperatingHours:    req.OperatingHours,
		MinBookingDays:    req.MinBookingDays,
		Amenities:         req.Amenities,
		ImageURL:          req.ImageURL,
	}

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		if err := tx.Facilities().Create(ctx, f); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		after(func(ctx context.Context) {
			if s.cache != nil {
				_ = s.cache.InvalidateFacility(ctx, f.ID)
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return f, nil
}

// UpdateRequest is a partial edit; nil fields stay untouched.
type UpdateRequest struct {
	Name              *string
	Location          *string
	PricePerKgPerDay  *float64
	TotalCapacity     *int
	AvailableCapacity *int
	MinBookingDays    *int
}

// PriceAdvisory reports whether a price sits in the advisory band for a
// category. Purely informational for provider UIs.
func (s *Service) PriceAdvisory(category string, price float64) (inBounds bool, min, max float64) {
	return pricing.PriceBounds(category, price)
}

// Update applies a provider's partial edit. Availability overrides run
// through the ledger clamp, and everything commits as one unit.
func (s *Service) Update(ctx context.Context, actor domain.Identity, id string, req UpdateRequest) (*domain.Facility, error) {
	const op = "service.facility.Update"

	if actor.Role != domain.RoleProvider {
		return nil, fmt.Errorf("%s:%w", op, ErrForbidden)
	}
	if req.PricePerKgPerDay != nil && *req.PricePerKgPerDay <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrPriceOutOfRange)
	}
	if req.TotalCapacity != nil && *req.TotalCapacity <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidRequest)
	}
	if req.MinBookingDays != nil && *req.MinBookingDays <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidRequest)
	}

	var updated *domain.Facility

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		f, err := tx.Facilities().Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		// unclaimed demo facilities can be edited by any provider
		if f.OwnerID != "" && f.OwnerID != actor.UserID {
			return fmt.Errorf("%s:%w", op, ErrForbidden)
		}

		if req.Name != nil {
			f.Name = *req.Name
		}
		if req.Location != nil {
			f.Location = *req.Location
		}
		if req.PricePerKgPerDay != nil {
			f.PricePerKgPerDay = *req.PricePerKgPerDay
		}
		if req.TotalCapacity != nil {
			f.TotalCapacity = *req.TotalCapacity
		}
		if req.MinBookingDays != nil {
			f.MinBookingDays = *req.MinBookingDays
		}

		if err := tx.Facilities().Update(ctx, f); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if req.AvailableCapacity != nil {
			if _, err := tx.Facilities().SetAvailability(ctx, id, *req.AvailableCapacity); err != nil {
				return fmt.Errorf("%s:%w", op, err)
			}
		}

		// re-read so the caller sees the clamped counters
		f, err = tx.Facilities().Get(ctx, id)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		updated = f

		after(func(ctx context.Context) {
			if s.cache != nil {
				_ = s.cache.InvalidateFacility(ctx, id)
			}
			if s.pubsub != nil {
				_ = s.pubsub.PublishFacilityChanged(ctx, id)
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
