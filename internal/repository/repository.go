package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightapp/internal/domain"
)

type AirlineRepository interface {
	Create(ctx context.Context, airline *domain.Airline) error
	GetByID(ctx context.Context, id int64) (*domain.Airline, error)
	GetByCode(ctx context.Context, code string) (*domain.Airline, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ListActive(ctx context.Context) ([]domain.Airline, error)
	Update(ctx context.Context, airline *domain.Airline) error
}

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	// GetByIDForUpdate loads the flight and locks its row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Flight, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]domain.Flight, error)
	UpdateAvailableSeats(ctx context.Context, id int64, available int) error
}

type BookingRepository interface {
	// Create stores the booking together with its passengers.
	Create(ctx context.Context, booking *domain.Booking) error
	GetByCode(ctx context.Context, code string) (*domain.Booking, error)
	GetByCodeForUpdate(ctx context.Context, code string) (*domain.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	// HeldSeats returns the subset of seats already taken by CONFIRMED
	// bookings on the flight.
	HeldSeats(ctx context.Context, flightID int64, seats []string) ([]string, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

// SearchCriteria selects bookable flights on a route departing within
// [DepartureFrom, DepartureTo) with at least MinSeats seats left.
type SearchCriteria struct {
	FromLocation  string
	ToLocation    string
	DepartureFrom time.Time
	DepartureTo   time.Time
	MinSeats      int
}

type Store interface {
	Airlines() AirlineRepository
	Flights() FlightRepository
	Bookings() BookingRepository
}

// Transactor hands out a Store bound to a single transaction. Row locks
// taken through that store are held until fn returns; the transaction
// commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	Store
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
