package memory

import (
	"context"
	"sort"

	"github.com/Domenick1991/flightapp/internal/domain"
)

type airlineRepo struct {
	s  *Store
	tx *txn
}

func (r *airlineRepo) Create(_ context.Context, airline *domain.Airline) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.airlines {
		if a.Code == airline.Code {
			return domain.Duplicate("Airline", "airline code", airline.Code)
		}
		if a.Name == airline.Name {
			return domain.Duplicate("Airline", "name", airline.Name)
		}
	}

	r.s.lastAirlineID++
	now := r.s.now()
	airline.ID = r.s.lastAirlineID
	airline.CreatedAt = now
	airline.UpdatedAt = now
	r.s.airlines[airline.ID] = *airline

	id := airline.ID
	r.tx.record(func() { delete(r.s.airlines, id) })
	return nil
}

func (r *airlineRepo) GetByID(_ context.Context, id int64) (*domain.Airline, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.airlines[id]
	if !ok {
		return nil, domain.NotFound("Airline", "id", id)
	}
	return &a, nil
}

func (r *airlineRepo) GetByCode(_ context.Context, code string) (*domain.Airline, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.airlines {
		if a.Code == code {
			return &a, nil
		}
	}
	return nil, domain.NotFound("Airline", "airline code", code)
}

func (r *airlineRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.airlines {
		if a.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *airlineRepo) ListActive(_ context.Context) ([]domain.Airline, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	airlines := make([]domain.Airline, 0, len(r.s.airlines))
	for _, a := range r.s.airlines {
		if a.IsActive {
			airlines = append(airlines, a)
		}
	}
	sort.Slice(airlines, func(i, j int) bool { return airlines[i].Name < airlines[j].Name })
	return airlines, nil
}

func (r *airlineRepo) Update(_ context.Context, airline *domain.Airline) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.airlines[airline.ID]
	if !ok {
		return domain.NotFound("Airline", "id", airline.ID)
	}
	for id, a := range r.s.airlines {
		if id != airline.ID && a.Name == airline.Name {
			return domain.Duplicate("Airline", "name", airline.Name)
		}
	}

	next := prev
	next.Name = airline.Name
	next.ContactNumber = airline.ContactNumber
	next.IsActive = airline.IsActive
	next.UpdatedAt = r.s.now()
	r.s.airlines[airline.ID] = next
	airline.UpdatedAt = next.UpdatedAt

	r.tx.record(func() { r.s.airlines[prev.ID] = prev })
	return nil
}
