package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/Domenick1991/flightapp/internal/repository"
)

type flightRepo struct {
	s  *Store
	tx *txn
}

func (r *flightRepo) Create(_ context.Context, flight *domain.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.airlines[flight.AirlineID]; !ok {
		return domain.NotFound("Airline", "id", flight.AirlineID)
	}
	for _, f := range r.s.flights {
		if f.FlightNumber == flight.FlightNumber {
			return domain.Duplicate("Flight", "flight number", flight.FlightNumber)
		}
	}

	r.s.lastFlightID++
	now := r.s.now()
	flight.ID = r.s.lastFlightID
	flight.CreatedAt = now
	flight.UpdatedAt = now

	stored := *flight
	stored.Airline = nil
	r.s.flights[flight.ID] = stored

	id := flight.ID
	r.tx.record(func() { delete(r.s.flights, id) })
	return nil
}

func (r *flightRepo) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.flightLocked(id)
}

func (r *flightRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, flightLockKey(id)); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *flightRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, f := range r.s.flights {
		if f.FlightNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *flightRepo) Search(_ context.Context, c repository.SearchCriteria) ([]domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	flights := make([]domain.Flight, 0)
	for id, f := range r.s.flights {
		if f.FromLocation != c.FromLocation || f.ToLocation != c.ToLocation {
			continue
		}
		if f.DepartureTime.Before(c.DepartureFrom) || !f.DepartureTime.Before(c.DepartureTo) {
			continue
		}
		if f.AvailableSeats < c.MinSeats || !f.Bookable() {
			continue
		}
		found, err := r.s.flightLocked(id)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *found)
	}
	sort.Slice(flights, func(i, j int) bool {
		if flights[i].DepartureTime.Equal(flights[j].DepartureTime) {
			return flights[i].ID < flights[j].ID
		}
		return flights[i].DepartureTime.Before(flights[j].DepartureTime)
	})
	return flights, nil
}

func (r *flightRepo) UpdateAvailableSeats(_ context.Context, id int64, available int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.flights[id]
	if !ok {
		return domain.NotFound("Flight", "id", id)
	}
	if available < 0 || available > prev.TotalSeats {
		return fmt.Errorf("flight %d: available seats %d outside [0, %d]", id, available, prev.TotalSeats)
	}

	next := prev
	next.AvailableSeats = available
	next.UpdatedAt = r.s.now()
	r.s.flights[id] = next

	r.tx.record(func() { r.s.flights[id] = prev })
	return nil
}

// flightLocked returns a copy of the flight with its airline attached.
// Callers hold s.mu.
func (s *Store) flightLocked(id int64) (*domain.Flight, error) {
	f, ok := s.flights[id]
	if !ok {
		return nil, domain.NotFound("Flight", "id", id)
	}
	if a, ok := s.airlines[f.AirlineID]; ok {
		f.Airline = &a
	}
	return &f, nil
}
