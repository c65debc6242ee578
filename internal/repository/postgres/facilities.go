package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
	"github.com/kisan-sangraha/sangraha-go/internal/repository"
)

// FacilityRepo is the facility catalog plus the capacity ledger. The ledger
// methods each run a single conditional UPDATE so two concurrent calls on
// the same facility can never both pass a stale precondition check.
type FacilityRepo struct {
	db DB
}

const facilityColumns = `id, COALESCE(owner_id, ''), name, location, distance, type,
	price_per_kg_per_day, total_capacity, available_capacity, rating,
	review_count, verified, certifications, contact_phone, operating_hours,
	min_booking_days, amenities, COALESCE(image_url, '')`

func scanFacility(row interface{ Scan(...any) error }, f *domain.Facility) error {
	return row.Scan(
		&f.ID, &f.OwnerID, &f.Name, &f.Location, &f.Distance, &f.Type,
		&f.PricePerKgPerDay, &f.TotalCapacity, &f.AvailableCapacity, &f.Rating,
		&f.ReviewCount, &f.Verified, &f.Certifications, &f.ContactPhone,
		&f.OperatingHours, &f.MinBookingDays, &f.Amenities, &f.ImageURL,
	)
}

func (r *FacilityRepo) Create(ctx context.Context, f *domain.Facility) error {
	const op = "postgres.FacilityRepo.Create"

	var ownerID any
	if f.OwnerID != "" {
		ownerID = f.OwnerID
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO facilities (
			id, owner_id, name, location, distance, type,
			price_per_kg_per_day, total_capacity, available_capacity, rating,
			review_count, verified, certifications, contact_phone,
			operating_hours, min_booking_days, amenities, image_url
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		f.ID, ownerID, f.Name, f.Location, f.Distance, f.Type,
		f.PricePerKgPerDay, f.TotalCapacity, f.AvailableCapacity, f.Rating,
		f.ReviewCount, f.Verified, f.Certifications, f.ContactPhone,
		f.OperatingHours, f.MinBookingDays, f.Amenities, nullIfEmpty(f.ImageURL),
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *FacilityRepo) Get(ctx context.Context, id string) (*domain.Facility, error) {
	const op = "postgres.FacilityRepo.Get"

	var f domain.Facility
	err := scanFacility(r.db.QueryRow(ctx,
		`SELECT `+facilityColumns+` FROM facilities WHERE id = $1`, id,
	), &f)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &f, nil
}

func (r *FacilityRepo) List(ctx context.Context, ownerID string) ([]domain.Facility, error) {
	const op = "postgres.FacilityRepo.List"

	query := `SELECT ` + facilityColumns + ` FROM facilities ORDER BY distance ASC`
	args := []any{}
	if ownerID != "" {
		query = `SELECT ` + facilityColumns + ` FROM facilities WHERE owner_id = $1 ORDER BY distance ASC`
		args = append(args, ownerID)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Facility
	for rows.Next() {
		var f domain.Facility
		if err := scanFacility(rows, &f); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

// Update persists price, total capacity and descriptive fields. Available
// capacity deliberately stays out: callers go through the ledger methods.
func (r *FacilityRepo) Update(ctx context.Context, f *domain.Facility) error {
	const op = "postgres.FacilityRepo.Update"

	tag, err := r.db.Exec(ctx,
		`UPDATE facilities SET
			name = $2, location = $3, distance = $4, type = $5,
			price_per_kg_per_day = $6, total_capacity = $7,
			available_capacity = LEAST(available_capacity, $7),
			rating = $8, review_count = $9, verified = $10,
			certifications = $11, contact_phone = $12, operating_hours = $13,
			min_booking_days = $14, amenities = $15, image_url = $16
		 WHERE id = $1`,
		f.ID, f.Name, f.Location, f.Distance, f.Type,
		f.PricePerKgPerDay, f.TotalCapacity,
		f.Rating, f.ReviewCount, f.Verified,
		f.Certifications, f.ContactPhone, f.OperatingHours,
		f.MinBookingDays, f.Amenities, nullIfEmpty(f.ImageURL),
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// Reserve commits capacity: a single conditional UPDATE that only fires when
// enough capacity is available, so concurrent reserves serialize on the row.
func (r *FacilityRepo) Reserve(ctx context.Context, id string, amount int) (int, error) {
	const op = "postgres.FacilityRepo.Reserve"

	if amount <= 0 {
		return 0, fmt.Errorf("%s: amount must be positive", op)
	}

	var available int
	err := r.db.QueryRow(ctx,
		`UPDATE facilities
		 SET available_capacity = available_capacity - $2
		 WHERE id = $1 AND available_capacity >= $2
		 RETURNING available_capacity`,
		id, amount,
	).Scan(&available)
	if err == nil {
		return available, nil
	}

	translated := translateDBErr(err)
	if !errors.Is(translated, repository.ErrNotFound) {
		return 0, fmt.Errorf("%s:%w", op, translated)
	}

	// No row updated: distinguish a missing facility from a short one.
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM facilities WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if !exists {
		return 0, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return 0, fmt.Errorf("%s:%w", op, repository.ErrInsufficientCapacity)
}

// Release frees capacity, clamped at total so a double-release can never push
// available above total. The clamp is reported rather than hidden.
func (r *FacilityRepo) Release(ctx context.Context, id string, amount int) (int, bool, error) {
	const op = "postgres.FacilityRepo.Release"

	var available int
	var clamped bool
	err := r.db.QueryRow(ctx,
		`UPDATE facilities f
		 SET available_capacity = LEAST(f.total_capacity, f.available_capacity + $2)
		 FROM (
			SELECT available_capacity AS prev, total_capacity AS cap
			FROM facilities WHERE id = $1 FOR UPDATE
		 ) prior
		 WHERE f.id = $1
		 RETURNING f.available_capacity, prior.prev + $2 > prior.cap`,
		id, amount,
	).Scan(&available, &clamped)
	if err != nil {
		return 0, false, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return available, clamped, nil
}

// SetAvailability is the provider-driven override, clamped into [0, total].
func (r *FacilityRepo) SetAvailability(ctx context.Context, id string, newAvailable int) (int, error) {
	const op = "postgres.FacilityRepo.SetAvailability"

	var available int
	err := r.db.QueryRow(ctx,
		`UPDATE facilities
		 SET available_capacity = GREATEST(0, LEAST(total_capacity, $2))
		 WHERE id = $1
		 RETURNING available_capacity`,
		id, newAvailable,
	).Scan(&available)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return available, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
