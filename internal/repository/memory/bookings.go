package memory

import (
	"context"
	"sort"

	"github.com/Domenick1991/flightapp/internal/domain"
)

type bookingRepo struct {
	s  *Store
	tx *txn
}

func (r *bookingRepo) Create(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.flights[booking.FlightID]; !ok {
		return domain.NotFound("Flight", "id", booking.FlightID)
	}
	for _, b := range r.s.bookings {
		if b.Code == booking.Code {
			return domain.Duplicate("Booking", "PNR", booking.Code)
		}
	}

	r.s.lastBookingID++
	now := r.s.now()
	booking.ID = r.s.lastBookingID
	booking.CreatedAt = now
	booking.UpdatedAt = now
	for i := range booking.Passengers {
		r.s.lastPassengerID++
		booking.Passengers[i].ID = r.s.lastPassengerID
		booking.Passengers[i].BookingID = booking.ID
	}
	r.s.bookings[booking.ID] = cloneBooking(*booking)

	id := booking.ID
	r.tx.record(func() { delete(r.s.bookings, id) })
	return nil
}

func (r *bookingRepo) GetByCode(_ context.Context, code string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, b := range r.s.bookings {
		if b.Code == code {
			found := cloneBooking(b)
			return &found, nil
		}
	}
	return nil, domain.NotFound("Booking", "PNR", code)
}

func (r *bookingRepo) GetByCodeForUpdate(ctx context.Context, code string) (*domain.Booking, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, bookingLockKey(code)); err != nil {
			return nil, err
		}
	}
	return r.GetByCode(ctx, code)
}

func (r *bookingRepo) ListByEmail(_ context.Context, email string) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	bookings := make([]domain.Booking, 0)
	for _, b := range r.s.bookings {
		if b.Email == email {
			bookings = append(bookings, cloneBooking(b))
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].ID > bookings[j].ID
		}
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return bookings, nil
}

func (r *bookingRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, b := range r.s.bookings {
		if b.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *bookingRepo) HeldSeats(_ context.Context, flightID int64, seats []string) ([]string, error) {
	if len(seats) == 0 {
		return nil, nil
	}
	wanted := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		wanted[seat] = struct{}{}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	held := make(map[string]struct{})
	for _, b := range r.s.bookings {
		if b.FlightID != flightID || b.Status != domain.BookingStatusConfirmed {
			continue
		}
		for _, p := range b.Passengers {
			if _, ok := wanted[p.SeatNumber]; ok {
				held[p.SeatNumber] = struct{}{}
			}
		}
	}

	var out []string
	for seat := range held {
		out = append(out, seat)
	}
	sort.Strings(out)
	return out, nil
}

func (r *bookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.bookings[id]
	if !ok {
		return domain.NotFound("Booking", "id", id)
	}
	next := prev
	next.Status = status
	next.UpdatedAt = r.s.now()
	r.s.bookings[id] = next

	r.tx.record(func() { r.s.bookings[id] = prev })
	return nil
}

func cloneBooking(b domain.Booking) domain.Booking {
	b.Flight = nil
	b.Passengers = append([]domain.Passenger(nil), b.Passengers...)
	return b
}
