package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightapp/internal/domain"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var flightColumns = []string{
	"f.id", "f.flight_number", "f.airline_id", "f.from_location", "f.to_location",
	"f.departure_time", "f.arrival_time", "f.total_seats", "f.available_seats",
	"f.base_price::text", "f.status", "f.is_active", "f.created_at", "f.updated_at",
	"a.name", "a.code",
}

type PGFlightRepository struct {
	db DBConn
	sb sq.StatementBuilderType
}

func NewFlightRepository(db DBConn) FlightRepository {
	return &PGFlightRepository{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	row := r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, airline_id, from_location, to_location, departure_time, arrival_time, total_seats, available_seats, base_price, status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		f.FlightNumber, f.AirlineID, f.FromLocation, f.ToLocation, f.DepartureTime, f.ArrivalTime,
		f.TotalSeats, f.AvailableSeats, f.BasePrice, f.Status, f.IsActive)
	if err := row.Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return translate(err, "Flight", "flight number", f.FlightNumber)
	}
	return nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.getByID(ctx, id, "")
}

func (r *PGFlightRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.getByID(ctx, id, "FOR UPDATE OF f")
}

func (r *PGFlightRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE flight_number=$1)`, number).Scan(&exists)
	return exists, err
}

func (r *PGFlightRepository) Search(ctx context.Context, c SearchCriteria) ([]domain.Flight, error) {
	query, args, err := r.selectFlights().
		Where(sq.Eq{"f.from_location": c.FromLocation, "f.to_location": c.ToLocation}).
		Where(sq.GtOrEq{"f.departure_time": c.DepartureFrom}).
		Where(sq.Lt{"f.departure_time": c.DepartureTo}).
		Where(sq.GtOrEq{"f.available_seats": c.MinSeats}).
		Where(sq.Eq{"f.is_active": true, "f.status": domain.FlightStatusScheduled}).
		OrderBy("f.departure_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search flights sql: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) UpdateAvailableSeats(ctx context.Context, id int64, available int) error {
	res, err := r.db.Exec(ctx, `UPDATE flights SET available_seats=$1, updated_at=now() WHERE id=$2`, available, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFound("Flight", "id", id)
	}
	return nil
}

func (r *PGFlightRepository) selectFlights() sq.SelectBuilder {
	return r.sb.Select(flightColumns...).
		From("flights f").
		Join("airlines a ON a.id = f.airline_id")
}

func (r *PGFlightRepository) getByID(ctx context.Context, id int64, suffix string) (*domain.Flight, error) {
	b := r.selectFlights().Where(sq.Eq{"f.id": id})
	if suffix != "" {
		b = b.Suffix(suffix)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get flight sql: %w", err)
	}

	f, err := scanFlight(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err, "Flight", "id", id)
	}
	return f, nil
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var (
		f     domain.Flight
		a     domain.Airline
		price string
	)
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.AirlineID, &f.FromLocation, &f.ToLocation,
		&f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.AvailableSeats,
		&price, &f.Status, &f.IsActive, &f.CreatedAt, &f.UpdatedAt,
		&a.Name, &a.Code); err != nil {
		return nil, err
	}

	basePrice, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse base price %q: %w", price, err)
	}
	f.BasePrice = basePrice
	a.ID = f.AirlineID
	f.Airline = &a
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
