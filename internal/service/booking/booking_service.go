package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/Domenick1991/flightapp/internal/kafka"
	"github.com/Domenick1991/flightapp/internal/metrics"
	"github.com/Domenick1991/flightapp/internal/repository"
	"github.com/Domenick1991/flightapp/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxPassengers      = 9
	defaultCodeAttempts       = 10
	defaultCancellationWindow = 24 * time.Hour
)

type BookingUseCase interface {
	BookFlight(ctx context.Context, flightID int64, input BookFlightInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, code string) (*domain.Booking, error)
	GetByCode(ctx context.Context, code string) (*domain.Booking, error)
	GetHistory(ctx context.Context, email string) ([]domain.Booking, error)
}

type CodeGenerator interface {
	Generate() (string, error)
}

type Inventory interface {
	AdjustTx(ctx context.Context, store repository.Store, flightID int64, delta int) (int, error)
}

type Cache interface {
	Invalidate(ctx context.Context, flightID int64) error
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload any, maxRetries int) error
}

type PassengerInput struct {
	Name           string                `json:"passengerName" validate:"required,min=2,max=100,person_name"`
	Gender         domain.Gender         `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	Age            *int                  `json:"age" validate:"required,gte=0,lte=120"`
	MealPreference domain.MealPreference `json:"mealPreference" validate:"omitempty,oneof=VEG NON_VEG NONE"`
	SeatNumber     string                `json:"seatNumber" validate:"required,seat_label"`
}

type BookFlightInput struct {
	ContactName string           `json:"contactName" validate:"required,min=2,max=100"`
	Email       string           `json:"email" validate:"required,email,max=100"`
	Passengers  []PassengerInput `json:"passengers" validate:"dive"`
}

type BookingService struct {
	tx        repository.Transactor
	inventory Inventory
	codes     CodeGenerator
	validate  *validator.Validator
	log       logrus.FieldLogger

	cache              Cache
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	publishRetries     int

	maxPassengers      int
	codeAttempts       int
	cancellationWindow time.Duration
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

// WithProducer enables booking events on topic, retried up to retries times.
func WithProducer(producer Producer, topic string, retries int) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.eventsTopic = topic
		s.publishRetries = retries
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithMaxPassengers(n int) BookingServiceOption {
	return func(s *BookingService) {
		s.maxPassengers = n
	}
}

func WithCodeAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		s.codeAttempts = n
	}
}

func WithCancellationWindow(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.cancellationWindow = d
	}
}

func NewBookingService(
	tx repository.Transactor,
	inventory Inventory,
	codes CodeGenerator,
	validate *validator.Validator,
	log logrus.FieldLogger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		tx:                 tx,
		inventory:          inventory,
		codes:              codes,
		validate:           validate,
		log:                log,
		publishRetries:     1,
		maxPassengers:      defaultMaxPassengers,
		codeAttempts:       defaultCodeAttempts,
		cancellationWindow: defaultCancellationWindow,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// BookFlight reserves seats for every passenger on the flight. All checks,
// the insert and the seat decrement run in one transaction holding the
// flight row lock.
func (s *BookingService) BookFlight(ctx context.Context, flightID int64, input BookFlightInput) (*domain.Booking, error) {
	booking, err := s.bookFlight(ctx, flightID, input)
	metrics.ObserveBooking(outcome(err))
	if err != nil {
		s.logFailure(err, logrus.Fields{"flight_id": flightID, "email": input.Email}, "booking rejected")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"code":      booking.Code,
		"flight_id": flightID,
		"seats":     booking.SeatCount,
		"total":     booking.TotalAmount.StringFixed(2),
	}).Info("flight booked")

	s.afterCommit(ctx, kafka.EventBookingConfirmed, booking)
	return booking, nil
}

func (s *BookingService) bookFlight(ctx context.Context, flightID int64, input BookFlightInput) (*domain.Booking, error) {
	input.ContactName = strings.TrimSpace(input.ContactName)
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	var booking *domain.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repository.Store) error {
		flight, err := store.Flights().GetByIDForUpdate(ctx, flightID)
		if err != nil {
			return err
		}
		if !flight.Bookable() {
			return domain.NewError(domain.KindBusinessRule, "Flight is not available for booking")
		}

		count := len(input.Passengers)
		if count < 1 || count > s.maxPassengers {
			return domain.ValidationError(fmt.Sprintf("Number of passengers must be between 1 and %d", s.maxPassengers))
		}
		if flight.AvailableSeats < count {
			return domain.NewError(domain.KindBusinessRule,
				"Not enough seats available. Only %d seats remaining", flight.AvailableSeats)
		}

		seats, err := requestedSeats(input.Passengers)
		if err != nil {
			return err
		}
		held, err := store.Bookings().HeldSeats(ctx, flight.ID, seats)
		if err != nil {
			return fmt.Errorf("check held seats: %w", err)
		}
		if len(held) > 0 {
			return domain.NewError(domain.KindConflict, "Seat %s is already booked", strings.Join(held, ", "))
		}

		b := &domain.Booking{
			FlightID:    flight.ID,
			ContactName: input.ContactName,
			Email:       input.Email,
			SeatCount:   count,
			TotalAmount: flight.BasePrice.Mul(decimal.NewFromInt(int64(count))),
			Status:      domain.BookingStatusConfirmed,
			Passengers:  toPassengers(input.Passengers),
		}
		if err := s.create(ctx, store, b); err != nil {
			return err
		}

		available, err := s.inventory.AdjustTx(ctx, store, flight.ID, -count)
		if err != nil {
			return err
		}
		flight.AvailableSeats = available
		b.Flight = flight
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CancelBooking releases the booking's seats. It is refused inside the
// cancellation window before departure; exactly the window is allowed.
func (s *BookingService) CancelBooking(ctx context.Context, code string) (*domain.Booking, error) {
	code = strings.TrimSpace(code)
	now := s.now()

	var booking *domain.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repository.Store) error {
		b, err := store.Bookings().GetByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if b.Status == domain.BookingStatusCancelled {
			return domain.NewError(domain.KindInvalidState, "Booking is already cancelled")
		}
		if b.Status != domain.BookingStatusConfirmed {
			return domain.NewError(domain.KindInvalidState, "Booking in status %s cannot be cancelled", b.Status)
		}

		// Bookings read seat holders under the flight lock, so it is taken
		// before the status write.
		flight, err := store.Flights().GetByIDForUpdate(ctx, b.FlightID)
		if err != nil {
			return err
		}
		if flight.DepartureTime.Sub(now) < s.cancellationWindow {
			return domain.NewError(domain.KindBusinessRule,
				"Cannot cancel booking. Cancellation is only allowed %d hours before departure", int(s.cancellationWindow.Hours()))
		}

		if err := store.Bookings().UpdateStatus(ctx, b.ID, domain.BookingStatusCancelled); err != nil {
			return fmt.Errorf("update booking status: %w", err)
		}
		available, err := s.inventory.AdjustTx(ctx, store, b.FlightID, b.SeatCount)
		if err != nil {
			return err
		}

		flight.AvailableSeats = available
		b.Status = domain.BookingStatusCancelled
		b.UpdatedAt = now
		b.Flight = flight
		booking = b
		return nil
	})
	metrics.ObserveCancellation(outcome(err))
	if err != nil {
		s.logFailure(err, logrus.Fields{"code": code}, "cancellation rejected")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"code":      booking.Code,
		"flight_id": booking.FlightID,
		"seats":     booking.SeatCount,
	}).Info("booking cancelled")

	s.afterCommit(ctx, kafka.EventBookingCancelled, booking)
	return booking, nil
}

func (s *BookingService) GetByCode(ctx context.Context, code string) (*domain.Booking, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ValidationError("PNR is required")
	}

	booking, err := s.tx.Bookings().GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	flight, err := s.tx.Flights().GetByID(ctx, booking.FlightID)
	if err != nil {
		return nil, fmt.Errorf("load flight of booking %s: %w", code, err)
	}
	booking.Flight = flight
	return booking, nil
}

// GetHistory lists the bookings made with email, newest first.
func (s *BookingService) GetHistory(ctx context.Context, email string) ([]domain.Booking, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.ValidationError("Email is required")
	}

	bookings, err := s.tx.Bookings().ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	flights := make(map[int64]*domain.Flight)
	for i := range bookings {
		id := bookings[i].FlightID
		if _, ok := flights[id]; !ok {
			flight, err := s.tx.Flights().GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("load flight %d: %w", id, err)
			}
			flights[id] = flight
		}
		bookings[i].Flight = flights[id]
	}
	return bookings, nil
}

// create stores b under a fresh reservation code, checked against every
// booking ever stored, cancelled ones included. A code inserted by a
// concurrent transaction after the check surfaces as a Conflict from Create
// and counts as a collision.
func (s *BookingService) create(ctx context.Context, store repository.Store, b *domain.Booking) error {
	for attempt := 1; attempt <= s.codeAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return domain.WrapError(domain.KindInternal, err, "generate reservation code")
		}
		exists, err := store.Bookings().ExistsByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("check reservation code: %w", err)
		}
		if !exists {
			b.Code = code
			err = store.Bookings().Create(ctx, b)
			if err == nil {
				return nil
			}
			if !domain.IsKind(err, domain.KindConflict) {
				return fmt.Errorf("save booking: %w", err)
			}
		}
		metrics.IncCodeCollision()
		s.log.WithFields(logrus.Fields{"code": code, "attempt": attempt}).Warn("reservation code collision")
	}
	b.Code = ""
	return domain.NewError(domain.KindInternal, "Failed to generate unique PNR after %d attempts", s.codeAttempts)
}

// afterCommit runs the side effects of a committed change. Failures are
// logged and never reach the caller.
func (s *BookingService) afterCommit(ctx context.Context, eventType string, b *domain.Booking) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, b.FlightID); err != nil {
			s.log.WithError(err).WithField("flight_id", b.FlightID).Warn("flight cache invalidation failed")
		}
	}
	if s.producer == nil || s.eventsTopic == "" {
		return
	}

	event := kafka.NewBookingEvent(eventType, s.now())
	event.Code = b.Code
	event.FlightID = b.FlightID
	event.Email = b.Email
	event.ContactName = b.ContactName
	event.SeatCount = b.SeatCount
	event.Seats = b.SeatNumbers()
	event.TotalAmount = b.TotalAmount.StringFixed(2)
	event.Status = string(b.Status)
	if b.Flight != nil {
		event.FlightNumber = b.Flight.FlightNumber
		event.DepartureTime = b.Flight.DepartureTime
	}

	topics := []string{s.eventsTopic}
	if s.notificationsTopic != "" {
		topics = append(topics, s.notificationsTopic)
	}
	for _, topic := range topics {
		if err := s.producer.PublishWithRetry(ctx, topic, b.Code, event, s.publishRetries); err != nil {
			metrics.ObserveEventPublish("error")
			s.log.WithError(err).WithFields(logrus.Fields{"topic": topic, "code": b.Code}).Warn("booking event not published")
			continue
		}
		metrics.ObserveEventPublish("ok")
	}
}

func (s *BookingService) logFailure(err error, fields logrus.Fields, msg string) {
	entry := s.log.WithFields(fields).WithError(err)
	if domain.KindOf(err) == domain.KindInternal {
		entry.Error(msg)
		return
	}
	entry.Info(msg)
}

// requestedSeats returns the seat labels of the request, failing on the
// first label claimed twice.
func requestedSeats(passengers []PassengerInput) ([]string, error) {
	seen := make(map[string]struct{}, len(passengers))
	seats := make([]string, 0, len(passengers))
	for _, p := range passengers {
		if _, dup := seen[p.SeatNumber]; dup {
			return nil, domain.NewError(domain.KindConflict, "Duplicate seat number: %s", p.SeatNumber)
		}
		seen[p.SeatNumber] = struct{}{}
		seats = append(seats, p.SeatNumber)
	}
	sort.Strings(seats)
	return seats, nil
}

func toPassengers(in []PassengerInput) []domain.Passenger {
	out := make([]domain.Passenger, 0, len(in))
	for _, p := range in {
		meal := p.MealPreference
		if meal == "" {
			meal = domain.MealNone
		}
		var age int
		if p.Age != nil {
			age = *p.Age
		}
		out = append(out, domain.Passenger{
			Name:           strings.TrimSpace(p.Name),
			Gender:         p.Gender,
			Age:            age,
			MealPreference: meal,
			SeatNumber:     p.SeatNumber,
		})
	}
	return out
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(domain.KindOf(err)))
}

var _ BookingUseCase = (*BookingService)(nil)
