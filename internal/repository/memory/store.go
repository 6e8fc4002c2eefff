// Package memory is an in-process implementation of the repository
// interfaces. Row locks are emulated with one semaphore per flight and per
// booking code, held by the transaction that took them until it ends.
// Writes are applied immediately and undone in reverse order on rollback.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/Domenick1991/flightapp/internal/repository"
)

type Store struct {
	mu       sync.RWMutex
	airlines map[int64]domain.Airline
	flights  map[int64]domain.Flight
	bookings map[int64]domain.Booking

	lastAirlineID   int64
	lastFlightID    int64
	lastBookingID   int64
	lastPassengerID int64

	locksMu sync.Mutex
	locks   map[string]*rowLock

	now func() time.Time
}

type Option func(*Store)

// WithClock overrides the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		airlines: make(map[int64]domain.Airline),
		flights:  make(map[int64]domain.Flight),
		bookings: make(map[int64]domain.Booking),
		locks:    make(map[string]*rowLock),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Airlines() repository.AirlineRepository {
	return &airlineRepo{s: s}
}

func (s *Store) Flights() repository.FlightRepository {
	return &flightRepo{s: s}
}

func (s *Store) Bookings() repository.BookingRepository {
	return &bookingRepo{s: s}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) (err error) {
	tx := &txn{s: s, held: make(map[string]*rowLock)}
	defer func() {
		if r := recover(); r != nil {
			tx.rollback()
			panic(r)
		}
		if err != nil {
			tx.rollback()
			return
		}
		tx.commit()
	}()

	return fn(ctx, &txStore{tx: tx})
}

// rowLock is a one-slot semaphore. refs counts the holder and waiters; the
// entry leaves the table when it drops to zero.
type rowLock struct {
	ch   chan struct{}
	refs int
}

func (s *Store) acquireRef(key string) *rowLock {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &rowLock{ch: make(chan struct{}, 1)}
		s.locks[key] = l
	}
	l.refs++
	return l
}

func (s *Store) dropRef(key string, l *rowLock) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, key)
	}
}

// txn tracks the locks and undo steps of one transaction.
type txn struct {
	s    *Store
	held map[string]*rowLock
	undo []func()
}

// lock is re-entrant within the transaction and honours ctx while waiting.
func (t *txn) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	l := t.s.acquireRef(key)
	select {
	case l.ch <- struct{}{}:
		t.held[key] = l
		return nil
	case <-ctx.Done():
		t.s.dropRef(key, l)
		return fmt.Errorf("wait for lock %s: %w", key, ctx.Err())
	}
}

// record registers an undo step. Callers hold s.mu.
func (t *txn) record(step func()) {
	if t != nil {
		t.undo = append(t.undo, step)
	}
}

func (t *txn) commit() {
	t.undo = nil
	t.release()
}

func (t *txn) rollback() {
	t.s.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.s.mu.Unlock()
	t.undo = nil
	t.release()
}

func (t *txn) release() {
	for key, l := range t.held {
		<-l.ch
		t.s.dropRef(key, l)
		delete(t.held, key)
	}
}

type txStore struct {
	tx *txn
}

func (ts *txStore) Airlines() repository.AirlineRepository {
	return &airlineRepo{s: ts.tx.s, tx: ts.tx}
}

func (ts *txStore) Flights() repository.FlightRepository {
	return &flightRepo{s: ts.tx.s, tx: ts.tx}
}

func (ts *txStore) Bookings() repository.BookingRepository {
	return &bookingRepo{s: ts.tx.s, tx: ts.tx}
}

func flightLockKey(id int64) string {
	return fmt.Sprintf("flight:%d", id)
}

func bookingLockKey(code string) string {
	return "booking:" + code
}

var (
	_ repository.Transactor = (*Store)(nil)
	_ repository.Store      = (*txStore)(nil)
)
