// Package inventory owns the available-seat counter of every flight.
// Nothing else writes flights.available_seats.
package inventory

import (
	"context"

	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/Domenick1991/flightapp/internal/metrics"
	"github.com/Domenick1991/flightapp/internal/repository"
	"github.com/sirupsen/logrus"
)

type Manager struct {
	tx  repository.Transactor
	log logrus.FieldLogger
}

func NewManager(tx repository.Transactor, log logrus.FieldLogger) *Manager {
	return &Manager{tx: tx, log: log}
}

// Adjust applies delta to the flight's available seats in its own
// transaction and returns the new count.
func (m *Manager) Adjust(ctx context.Context, flightID int64, delta int) (int, error) {
	var available int
	err := m.tx.WithinTx(ctx, func(ctx context.Context, store repository.Store) error {
		var err error
		available, err = m.AdjustTx(ctx, store, flightID, delta)
		return err
	})
	if err != nil {
		return 0, err
	}
	return available, nil
}

// AdjustTx applies delta inside the caller's transaction. The flight row
// stays locked until that transaction ends.
func (m *Manager) AdjustTx(ctx context.Context, store repository.Store, flightID int64, delta int) (int, error) {
	flight, err := store.Flights().GetByIDForUpdate(ctx, flightID)
	if err != nil {
		return 0, err
	}

	next := flight.AvailableSeats + delta
	if next < 0 {
		return 0, domain.NewError(domain.KindOutOfRange,
			"Cannot reserve %d seat(s) on flight %s: only %d available", -delta, flight.FlightNumber, flight.AvailableSeats)
	}
	if next > flight.TotalSeats {
		return 0, domain.NewError(domain.KindOutOfRange,
			"Cannot release %d seat(s) on flight %s: capacity is %d", delta, flight.FlightNumber, flight.TotalSeats)
	}
	if delta == 0 {
		return next, nil
	}

	if err := store.Flights().UpdateAvailableSeats(ctx, flightID, next); err != nil {
		return 0, err
	}
	metrics.SeatsAdjusted(delta)

	m.log.WithFields(logrus.Fields{
		"flight_id": flightID,
		"delta":     delta,
		"available": next,
	}).Debug("seat inventory adjusted")
	return next, nil
}
