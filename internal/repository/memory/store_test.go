package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/Domenick1991/flightapp/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFlight(t *testing.T, s *Store, seats int) *domain.Flight {
	t.Helper()
	ctx := context.Background()

	airline := &domain.Airline{Name: "Air India", Code: "AI", IsActive: true}
	require.NoError(t, s.Airlines().Create(ctx, airline))

	dep := time.Date(2026, 12, 1, 9, 0, 0, 0, time.UTC)
	flight := &domain.Flight{
		FlightNumber:   "AI2024",
		AirlineID:      airline.ID,
		FromLocation:   "Delhi",
		ToLocation:     "Mumbai",
		DepartureTime:  dep,
		ArrivalTime:    dep.Add(2 * time.Hour),
		TotalSeats:     seats,
		AvailableSeats: seats,
		BasePrice:      decimal.NewFromInt(4500),
		Status:         domain.FlightStatusScheduled,
		IsActive:       true,
	}
	require.NoError(t, s.Flights().Create(ctx, flight))
	return flight
}

func TestStore_WithinTx_RollbackUndoesWrites(t *testing.T) {
	s := NewStore()
	flight := seedFlight(t, s, 10)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		require.NoError(t, tx.Flights().UpdateAvailableSeats(ctx, flight.ID, 8))
		require.NoError(t, tx.Bookings().Create(ctx, &domain.Booking{
			Code:      "261201AAAA",
			FlightID:  flight.ID,
			Email:     "a@example.com",
			SeatCount: 2,
			Status:    domain.BookingStatusConfirmed,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Flights().GetByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.AvailableSeats)

	exists, err := s.Bookings().ExistsByCode(ctx, "261201AAAA")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_WithinTx_CommitKeepsWrites(t *testing.T) {
	s := NewStore()
	flight := seedFlight(t, s, 10)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		f, err := tx.Flights().GetByIDForUpdate(ctx, flight.ID)
		if err != nil {
			return err
		}
		// re-entrant lock
		if _, err := tx.Flights().GetByIDForUpdate(ctx, flight.ID); err != nil {
			return err
		}
		return tx.Flights().UpdateAvailableSeats(ctx, f.ID, f.AvailableSeats-3)
	})
	require.NoError(t, err)

	got, err := s.Flights().GetByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.AvailableSeats)
	assert.Equal(t, "AI", got.AirlineCode())
}

func TestStore_FlightLockSerializesTransactions(t *testing.T) {
	s := NewStore()
	flight := seedFlight(t, s, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
				f, err := tx.Flights().GetByIDForUpdate(ctx, flight.ID)
				if err != nil {
					return err
				}
				return tx.Flights().UpdateAvailableSeats(ctx, f.ID, f.AvailableSeats-1)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Flights().GetByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableSeats)
}

func TestStore_LockWaitHonoursContext(t *testing.T) {
	s := NewStore()
	flight := seedFlight(t, s, 5)

	locked := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = s.WithinTx(context.Background(), func(ctx context.Context, tx repository.Store) error {
			_, err := tx.Flights().GetByIDForUpdate(ctx, flight.ID)
			close(locked)
			<-done
			return err
		})
	}()
	<-locked
	defer close(done)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		_, err := tx.Flights().GetByIDForUpdate(ctx, flight.ID)
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_LockTableShrinksAfterRelease(t *testing.T) {
	s := NewStore()
	flight := seedFlight(t, s, 5)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		code := fmt.Sprintf("261201%04d", i)
		err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
			_, err := tx.Bookings().GetByCodeForUpdate(ctx, code)
			return err
		})
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	}

	locked := make(chan struct{})
	release := make(chan struct{})
	holder := make(chan error, 1)
	go func() {
		holder <- s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
			_, err := tx.Flights().GetByIDForUpdate(ctx, flight.ID)
			close(locked)
			<-release
			return err
		})
	}()
	<-locked

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := s.WithinTx(waitCtx, func(ctx context.Context, tx repository.Store) error {
		_, err := tx.Flights().GetByIDForUpdate(ctx, flight.ID)
		return err
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	s.locksMu.Lock()
	assert.Len(t, s.locks, 1)
	assert.Equal(t, 1, s.locks[flightLockKey(flight.ID)].refs)
	s.locksMu.Unlock()

	close(release)
	require.NoError(t, <-holder)

	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	assert.Empty(t, s.locks)
}

func TestStore_Uniqueness(t *testing.T) {
	s := NewStore()
	flight := seedFlight(t, s, 5)
	ctx := context.Background()

	err := s.Airlines().Create(ctx, &domain.Airline{Name: "Other", Code: "AI"})
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	dup := *flight
	dup.ID = 0
	err = s.Flights().Create(ctx, &dup)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	err = s.Flights().UpdateAvailableSeats(ctx, flight.ID, 6)
	assert.Error(t, err)

	_, err = s.Flights().GetByID(ctx, 999)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestStore_BookingQueries(t *testing.T) {
	clock := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	flight := seedFlight(t, s, 10)
	ctx := context.Background()

	first := &domain.Booking{
		Code: "261001AAAA", FlightID: flight.ID, Email: "a@example.com", SeatCount: 1,
		Status:     domain.BookingStatusConfirmed,
		Passengers: []domain.Passenger{{Name: "A", SeatNumber: "1A"}},
	}
	second := &domain.Booking{
		Code: "261001BBBB", FlightID: flight.ID, Email: "a@example.com", SeatCount: 1,
		Status:     domain.BookingStatusConfirmed,
		Passengers: []domain.Passenger{{Name: "B", SeatNumber: "1B"}},
	}
	require.NoError(t, s.Bookings().Create(ctx, first))
	require.NoError(t, s.Bookings().Create(ctx, second))
	assert.Equal(t, first.ID, first.Passengers[0].BookingID)

	history, err := s.Bookings().ListByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "261001BBBB", history[0].Code)

	held, err := s.Bookings().HeldSeats(ctx, flight.ID, []string{"1A", "1B", "2C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1A", "1B"}, held)

	require.NoError(t, s.Bookings().UpdateStatus(ctx, first.ID, domain.BookingStatusCancelled))
	held, err = s.Bookings().HeldSeats(ctx, flight.ID, []string{"1A", "1B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1B"}, held)

	got, err := s.Bookings().GetByCode(ctx, "261001AAAA")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, got.Status)
	got.Passengers[0].SeatNumber = "ZZ"

	again, err := s.Bookings().GetByCode(ctx, "261001AAAA")
	require.NoError(t, err)
	assert.Equal(t, "1A", again.Passengers[0].SeatNumber)
}

func TestStore_Search(t *testing.T) {
	s := NewStore()
	flight := seedFlight(t, s, 3)
	ctx := context.Background()
	day := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	later := *flight
	later.ID = 0
	later.FlightNumber = "AI2025"
	later.DepartureTime = flight.DepartureTime.Add(-4 * time.Hour)
	later.ArrivalTime = later.DepartureTime.Add(2 * time.Hour)
	require.NoError(t, s.Flights().Create(ctx, &later))

	found, err := s.Flights().Search(ctx, repository.SearchCriteria{
		FromLocation: "Delhi", ToLocation: "Mumbai",
		DepartureFrom: day, DepartureTo: day.Add(24 * time.Hour), MinSeats: 2,
	})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "AI2025", found[0].FlightNumber)

	found, err = s.Flights().Search(ctx, repository.SearchCriteria{
		FromLocation: "Delhi", ToLocation: "Mumbai",
		DepartureFrom: day, DepartureTo: day.Add(24 * time.Hour), MinSeats: 4,
	})
	require.NoError(t, err)
	assert.Empty(t, found)
}
