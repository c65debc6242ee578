// Package memory is an in-memory repository.Store. It backs tests and demo
// seeding with the same contract the Postgres store satisfies: ledger calls
// are atomic, and RunTx gives all-or-nothing semantics by holding the store
// lock for the whole unit of work and restoring a snapshot on error.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
	"github.com/kisan-sangraha/sangraha-go/internal/repository"
)

type Store struct {
	mu sync.Mutex

	facilities map[string]domain.Facility
	bookings   map[string]domain.Booking
	users      map[string]domain.User
	insights   map[string]domain.Insight
}

func NewStore() *Store {
	return &Store{
		facilities: make(map[string]domain.Facility),
		bookings:   make(map[string]domain.Booking),
		users:      make(map[string]domain.User),
		insights:   make(map[string]domain.Insight),
	}
}

func (s *Store) Facilities() repository.Facilities { return facilityRepo{s: s, lock: true} }
func (s *Store) Bookings() repository.Bookings     { return bookingRepo{s: s, lock: true} }
func (s *Store) Users() repository.Users           { return userRepo{s: s, lock: true} }
func (s *Store) Insights() repository.Insights     { return insightRepo{s: s, lock: true} }

// RunTx serializes the unit of work against every other store access and
// rolls the data back to the entry snapshot when fn fails.
func (s *Store) RunTx(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Store) error,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()

	if err := fn(ctx, txStore{s: s}); err != nil {
		s.restore(snap)
		return err
	}

	return nil
}

// txStore is the transactional view: the store lock is already held, so its
// repositories skip locking. Nested RunTx joins the unit in progress.
type txStore struct {
	s *Store
}

func (t txStore) Facilities() repository.Facilities { return facilityRepo{s: t.s} }
func (t txStore) Bookings() repository.Bookings     { return bookingRepo{s: t.s} }
func (t txStore) Users() repository.Users           { return userRepo{s: t.s} }
func (t txStore) Insights() repository.Insights     { return insightRepo{s: t.s} }

func (t txStore) RunTx(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Store) error,
) error {
	return fn(ctx, t)
}

type snapshot struct {
	facilities map[string]domain.Facility
	bookings   map[string]domain.Booking
	users      map[string]domain.User
	insights   map[string]domain.Insight
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		facilities: cloneMap(s.facilities, cloneFacility),
		bookings:   cloneMap(s.bookings, func(b domain.Booking) domain.Booking { return b }),
		users:      cloneMap(s.users, func(u domain.User) domain.User { return u }),
		insights:   cloneMap(s.insights, func(i domain.Insight) domain.Insight { return i }),
	}
}

func (s *Store) restore(snap snapshot) {
	s.facilities = snap.facilities
	s.bookings = snap.bookings
	s.users = snap.users
	s.insights = snap.insights
}

func cloneMap[V any](m map[string]V, cloneVal func(V) V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = cloneVal(v)
	}
	return out
}

func cloneFacility(f domain.Facility) domain.Facility {
	f.Type = append([]string(nil), f.Type...)
	f.Certifications = append([]string(nil), f.Certifications...)
	f.Amenities = append([]string(nil), f.Amenities...)
	return f
}

// --- facilities + capacity ledger ---

type facilityRepo struct {
	s    *Store
	lock bool
}

func (r facilityRepo) locked(fn func() error) error {
	if r.lock {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	return fn()
}

func (r facilityRepo) Create(ctx context.Context, f *domain.Facility) error {
	const op = "memory.facilityRepo.Create"

	return r.locked(func() error {
		if _, ok := r.s.facilities[f.ID]; ok {
			return fmt.Errorf("%s:%w", op, repository.ErrConflict)
		}
		r.s.facilities[f.ID] = cloneFacility(*f)
		return nil
	})
}

func (r facilityRepo) Get(ctx context.Context, id string) (*domain.Facility, error) {
	const op = "memory.facilityRepo.Get"

	var out domain.Facility
	err := r.locked(func() error {
		f, ok := r.s.facilities[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		out = cloneFacility(f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r facilityRepo) List(ctx context.Context, ownerID string) ([]domain.Facility, error) {
	var out []domain.Facility
	_ = r.locked(func() error {
		for _, f := range r.s.facilities {
			if ownerID != "" && f.OwnerID != ownerID {
				continue
			}
			out = append(out, cloneFacility(f))
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

func (r facilityRepo) Update(ctx context.Context, f *domain.Facility) error {
	const op = "memory.facilityRepo.Update"

	return r.locked(func() error {
		cur, ok := r.s.facilities[f.ID]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}

		next := cloneFacility(*f)
		// available capacity belongs to the ledger; keep the current
		// value, re-clamped in case total shrank
		next.AvailableCapacity = cur.AvailableCapacity
		if next.AvailableCapacity > next.TotalCapacity {
			next.AvailableCapacity = next.TotalCapacity
		}
		r.s.facilities[f.ID] = next
		return nil
	})
}

func (r facilityRepo) Reserve(ctx context.Context, id string, amount int) (int, error) {
	const op = "memory.facilityRepo.Reserve"

	if amount <= 0 {
		return 0, fmt.Errorf("%s: amount must be positive", op)
	}

	var available int
	err := r.locked(func() error {
		f, ok := r.s.facilities[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		if f.AvailableCapacity < amount {
			return fmt.Errorf("%s:%w", op, repository.ErrInsufficientCapacity)
		}
		f.AvailableCapacity -= amount
		r.s.facilities[id] = f
		available = f.AvailableCapacity
		return nil
	})
	if err != nil {
		return 0, err
	}
	return available, nil
}

func (r facilityRepo) Release(ctx context.Context, id string, amount int) (int, bool, error) {
	const op = "memory.facilityRepo.Release"

	var available int
	var clamped bool
	err := r.locked(func() error {
		f, ok := r.s.facilities[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		next := f.AvailableCapacity + amount
		if next > f.TotalCapacity {
			next = f.TotalCapacity
			clamped = true
		}
		f.AvailableCapacity = next
		r.s.facilities[id] = f
		available = next
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return available, clamped, nil
}

func (r facilityRepo) SetAvailability(ctx context.Context, id string, newAvailable int) (int, error) {
	const op = "memory.facilityRepo.SetAvailability"

	var available int
	err := r.locked(func() error {
		f, ok := r.s.facilities[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		if newAvailable < 0 {
			newAvailable = 0
		}
		if newAvailable > f.TotalCapacity {
			newAvailable = f.TotalCapacity
		}
		f.AvailableCapacity = newAvailable
		r.s.facilities[id] = f
		available = newAvailable
		return nil
	})
	if err != nil {
		return 0, err
	}
	return available, nil
}

// --- bookings ---

type bookingRepo struct {
	s    *Store
	lock bool
}

func (r bookingRepo) locked(fn func() error) error {
	if r.lock {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	return fn()
}

func (r bookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	const op = "memory.bookingRepo.Create"

	return r.locked(func() error {
		if _, ok := r.s.bookings[b.ID]; ok {
			return fmt.Errorf("%s:%w", op, repository.ErrConflict)
		}
		r.s.bookings[b.ID] = *b
		return nil
	})
}

func (r bookingRepo) Get(ctx context.Context, id string) (*domain.Booking, error) {
	const op = "memory.bookingRepo.Get"

	var out domain.Booking
	err := r.locked(func() error {
		b, ok := r.s.bookings[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r bookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	var out []domain.Booking
	_ = r.locked(func() error {
		for _, b := range r.s.bookings {
			if b.UserID == userID {
				out = append(out, b)
			}
		}
		return nil
	})

	sortBookings(out)
	return out, nil
}

func (r bookingRepo) ListByFacilities(ctx context.Context, facilityIDs []string) ([]domain.Booking, error) {
	ids := make(map[string]bool, len(facilityIDs))
	for _, id := range facilityIDs {
		ids[id] = true
	}

	var out []domain.Booking
	_ = r.locked(func() error {
		for _, b := range r.s.bookings {
			if ids[b.FacilityID] {
				out = append(out, b)
			}
		}
		return nil
	})

	sortBookings(out)
	return out, nil
}

func (r bookingRepo) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	const op = "memory.bookingRepo.UpdateStatus"

	return r.locked(func() error {
		b, ok := r.s.bookings[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		b.Status = status
		r.s.bookings[id] = b
		return nil
	})
}

// newest first, ID as a tiebreaker for deterministic tests
func sortBookings(bs []domain.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		if !bs[i].StartDate.Equal(bs[j].StartDate) {
			return bs[i].StartDate.After(bs[j].StartDate)
		}
		return bs[i].ID < bs[j].ID
	})
}

// --- users ---

type userRepo struct {
	s    *Store
	lock bool
}

func (r userRepo) locked(fn func() error) error {
	if r.lock {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	return fn()
}

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	const op = "memory.userRepo.Create"

	return r.locked(func() error {
		for _, existing := range r.s.users {
			if existing.Username == u.Username {
				return fmt.Errorf("%s:%w", op, repository.ErrConflict)
			}
		}
		r.s.users[u.ID] = *u
		return nil
	})
}

func (r userRepo) Get(ctx context.Context, id string) (*domain.User, error) {
	const op = "memory.userRepo.Get"

	var out domain.User
	err := r.locked(func() error {
		u, ok := r.s.users[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const op = "memory.userRepo.GetByUsername"

	var out domain.User
	err := r.locked(func() error {
		for _, u := range r.s.users {
			if u.Username == username {
				out = u
				return nil
			}
		}
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// --- insights ---

type insightRepo struct {
	s    *Store
	lock bool
}

func (r insightRepo) locked(fn func() error) error {
	if r.lock {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	return fn()
}

func (r insightRepo) Create(ctx context.Context, in *domain.Insight) error {
	const op = "memory.insightRepo.Create"

	return r.locked(func() error {
		if _, ok := r.s.insights[in.ID]; ok {
			return fmt.Errorf("%s:%w", op, repository.ErrConflict)
		}
		r.s.insights[in.ID] = *in
		return nil
	})
}

func (r insightRepo) List(ctx context.Context) ([]domain.Insight, error) {
	var out []domain.Insight
	_ = r.locked(func() error {
		for _, in := range r.s.insights {
			out = append(out, in)
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
