package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightapp/internal/domain"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	bookingColumns   = []string{"id", "code", "flight_id", "email", "contact_name", "seat_count", "total_amount::text", "status", "created_at", "updated_at"}
	passengerColumns = []string{"id", "booking_id", "name", "gender", "age", "meal_preference", "seat_number"}
)

type PGBookingRepository struct {
	db DBConn
	sb sq.StatementBuilderType
}

func NewBookingRepository(db DBConn) BookingRepository {
	return &PGBookingRepository{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (code, flight_id, email, contact_name, seat_count, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		booking.Code, booking.FlightID, booking.Email, booking.ContactName, booking.SeatCount, booking.TotalAmount, booking.Status).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return translate(err, "Booking", "PNR", booking.Code)
	}

	for i := range booking.Passengers {
		p := &booking.Passengers[i]
		p.BookingID = booking.ID
		if err := tx.QueryRow(ctx, `INSERT INTO passengers (booking_id, name, gender, age, meal_preference, seat_number)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`, p.BookingID, p.Name, p.Gender, p.Age, p.MealPreference, p.SeatNumber).
			Scan(&p.ID); err != nil {
			return fmt.Errorf("insert passenger %s: %w", p.SeatNumber, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByCode(ctx context.Context, code string) (*domain.Booking, error) {
	return r.getByCode(ctx, code, "")
}

func (r *PGBookingRepository) GetByCodeForUpdate(ctx context.Context, code string) (*domain.Booking, error) {
	return r.getByCode(ctx, code, "FOR UPDATE")
}

func (r *PGBookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	query, args, err := r.sb.Select(bookingColumns...).
		From("bookings").
		Where(sq.Eq{"email": email}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}

	ids := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	passengers, err := r.passengers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		bookings[i].Passengers = passengers[bookings[i].ID]
	}
	return bookings, nil
}

func (r *PGBookingRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE code=$1)`, code).Scan(&exists)
	return exists, err
}

func (r *PGBookingRepository) HeldSeats(ctx context.Context, flightID int64, seats []string) ([]string, error) {
	if len(seats) == 0 {
		return nil, nil
	}
	query, args, err := r.sb.Select("DISTINCT p.seat_number").
		From("passengers p").
		Join("bookings b ON b.id = p.booking_id").
		Where(sq.Eq{"b.flight_id": flightID, "b.status": domain.BookingStatusConfirmed}).
		Where(sq.Eq{"p.seat_number": seats}).
		OrderBy("p.seat_number").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var held []string
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		held = append(held, seat)
	}
	return held, rows.Err()
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	res, err := r.db.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFound("Booking", "id", id)
	}
	return nil
}

func (r *PGBookingRepository) getByCode(ctx context.Context, code, suffix string) (*domain.Booking, error) {
	b := r.sb.Select(bookingColumns...).From("bookings").Where(sq.Eq{"code": code})
	if suffix != "" {
		b = b.Suffix(suffix)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	booking, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err, "Booking", "PNR", code)
	}

	passengers, err := r.passengers(ctx, []int64{booking.ID})
	if err != nil {
		return nil, err
	}
	booking.Passengers = passengers[booking.ID]
	return booking, nil
}

func (r *PGBookingRepository) passengers(ctx context.Context, bookingIDs []int64) (map[int64][]domain.Passenger, error) {
	query, args, err := r.sb.Select(passengerColumns...).
		From("passengers").
		Where(sq.Eq{"booking_id": bookingIDs}).
		OrderBy("booking_id", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byBooking := make(map[int64][]domain.Passenger, len(bookingIDs))
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Name, &p.Gender, &p.Age, &p.MealPreference, &p.SeatNumber); err != nil {
			return nil, err
		}
		byBooking[p.BookingID] = append(byBooking[p.BookingID], p)
	}
	return byBooking, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b      domain.Booking
		amount string
	)
	if err := row.Scan(&b.ID, &b.Code, &b.FlightID, &b.Email, &b.ContactName, &b.SeatCount,
		&amount, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	total, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse total amount %q: %w", amount, err)
	}
	b.TotalAmount = total
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
