package postgres

import (
	"context"
	"fmt"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
	"github.com/kisan-sangraha/sangraha-go/internal/repository"
)

type BookingRepo struct {
	db DB
}

const bookingColumns = `id, user_id, facility_id, facility_name, facility_location,
	quantity, duration, start_date, end_date, total_cost,
	price_per_kg_per_day, status, storage_type, storage_category`

func scanBooking(row interface{ Scan(...any) error }, b *domain.Booking) error {
	var status string
	if err := row.Scan(
		&b.ID, &b.UserID, &b.FacilityID, &b.FacilityName, &b.FacilityLocation,
		&b.Quantity, &b.Duration, &b.StartDate, &b.EndDate, &b.TotalCost,
		&b.PricePerKgPerDay, &status, &b.StorageType, &b.StorageCategory,
	); err != nil {
		return err
	}
	b.Status = domain.BookingStatus(status)
	return nil
}

func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	const op = "postgres.BookingRepo.Create"

	_, err := r.db.Exec(ctx,
		`INSERT INTO bookings (
			id, user_id, facility_id, facility_name, facility_location,
			quantity, duration, start_date, end_date, total_cost,
			price_per_kg_per_day, status, storage_type, storage_category
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		b.ID, b.UserID, b.FacilityID, b.FacilityName, b.FacilityLocation,
		b.Quantity, b.Duration, b.StartDate, b.EndDate, b.TotalCost,
		b.PricePerKgPerDay, string(b.Status), b.StorageType, b.StorageCategory,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *BookingRepo) Get(ctx context.Context, id string) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	var b domain.Booking
	err := scanBooking(r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id,
	), &b)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &b, nil
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListByUser"

	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE user_id = $1
		 ORDER BY start_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	out, err := collectBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (r *BookingRepo) ListByFacilities(ctx context.Context, facilityIDs []string) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListByFacilities"

	if len(facilityIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE facility_id = ANY($1)
		 ORDER BY start_date DESC`,
		facilityIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	out, err := collectBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	const op = "postgres.BookingRepo.UpdateStatus"

	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func collectBookings(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]domain.Booking, error) {
	var out []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, translateDBErr(err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBErr(err)
	}
	return out, nil
}
