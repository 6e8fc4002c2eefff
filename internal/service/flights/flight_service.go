package flights

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/flightapp/internal/cache"
	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/Domenick1991/flightapp/internal/metrics"
	"github.com/Domenick1991/flightapp/internal/repository"
	"github.com/Domenick1991/flightapp/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DateTimeLayout = "2006-01-02T15:04:05"
	DateLayout     = "2006-01-02"
)

type FlightUseCase interface {
	AddFlightInventory(ctx context.Context, input AddFlightInput) (*domain.Flight, error)
	Search(ctx context.Context, input SearchInput) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

// FlightCache is the read-through cache in front of search and lookup.
type FlightCache interface {
	GetSearch(ctx context.Context, key cache.SearchKey) ([]domain.Flight, bool, error)
	SetSearch(ctx context.Context, key cache.SearchKey, flights []domain.Flight) error
	GetFlight(ctx context.Context, id int64) (*domain.Flight, bool, error)
	SetFlight(ctx context.Context, flight *domain.Flight) error
	InvalidateSearches(ctx context.Context) error
}

type AddFlightInput struct {
	FlightNumber  string          `json:"flightNumber" validate:"required,flight_number"`
	AirlineCode   string          `json:"airlineCode" validate:"required,airline_code"`
	FromLocation  string          `json:"fromLocation" validate:"required,min=3,max=100"`
	ToLocation    string          `json:"toLocation" validate:"required,min=3,max=100"`
	DepartureTime string          `json:"departureTime" validate:"required"`
	ArrivalTime   string          `json:"arrivalTime" validate:"required"`
	TotalSeats    int             `json:"totalSeats" validate:"required,gte=1,lte=500"`
	BasePrice     decimal.Decimal `json:"basePrice" validate:"required,gte=0.01,lte=1000000"`
}

// SearchInput carries the route query. ReturnDate and IsRoundTrip are
// accepted and ignored.
type SearchInput struct {
	FromLocation       string `json:"fromLocation" validate:"required,max=100"`
	ToLocation         string `json:"toLocation" validate:"required,max=100"`
	TravelDate         string `json:"travelDate" validate:"required"`
	NumberOfPassengers int    `json:"numberOfPassengers" validate:"required,gte=1,lte=9"`
	ReturnDate         string `json:"returnDate,omitempty"`
	IsRoundTrip        bool   `json:"isRoundTrip,omitempty"`
}

type FlightService struct {
	store    repository.Store
	validate *validator.Validator
	log      logrus.FieldLogger
	cache    FlightCache
	location *time.Location
	now      func() time.Time
}

type FlightServiceOption func(*FlightService)

func WithCache(cache FlightCache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = cache
	}
}

// WithLocation sets the zone local times and travel dates are read in.
func WithLocation(loc *time.Location) FlightServiceOption {
	return func(s *FlightService) {
		s.location = loc
	}
}

func WithClock(now func() time.Time) FlightServiceOption {
	return func(s *FlightService) {
		s.now = now
	}
}

func NewFlightService(store repository.Store, validate *validator.Validator, log logrus.FieldLogger, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		store:    store,
		validate: validate,
		log:      log,
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddFlightInventory publishes a new flight with every seat available.
func (s *FlightService) AddFlightInventory(ctx context.Context, input AddFlightInput) (*domain.Flight, error) {
	input.FlightNumber = strings.TrimSpace(input.FlightNumber)
	input.AirlineCode = strings.TrimSpace(input.AirlineCode)
	input.FromLocation = strings.TrimSpace(input.FromLocation)
	input.ToLocation = strings.TrimSpace(input.ToLocation)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	departure, arrival, err := s.parseSchedule(input.DepartureTime, input.ArrivalTime)
	if err != nil {
		return nil, err
	}
	if !arrival.After(departure) {
		return nil, domain.NewError(domain.KindBusinessRule, "Arrival time must be after departure time")
	}

	exists, err := s.store.Flights().ExistsByNumber(ctx, input.FlightNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Duplicate("Flight", "flight number", input.FlightNumber)
	}

	airline, err := s.store.Airlines().GetByCode(ctx, input.AirlineCode)
	if err != nil {
		return nil, err
	}

	flight := &domain.Flight{
		FlightNumber:   input.FlightNumber,
		AirlineID:      airline.ID,
		Airline:        airline,
		FromLocation:   input.FromLocation,
		ToLocation:     input.ToLocation,
		DepartureTime:  departure,
		ArrivalTime:    arrival,
		TotalSeats:     input.TotalSeats,
		AvailableSeats: input.TotalSeats,
		BasePrice:      input.BasePrice,
		Status:         domain.FlightStatusScheduled,
		IsActive:       true,
	}
	if err := s.store.Flights().Create(ctx, flight); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateSearches(ctx); err != nil {
			s.log.WithError(err).Warn("search cache invalidation failed")
		}
	}

	s.log.WithFields(logrus.Fields{
		"flight_id":     flight.ID,
		"flight_number": flight.FlightNumber,
		"airline":       airline.Code,
	}).Info("flight inventory added")
	return flight, nil
}

// Search lists bookable flights on the route departing on the travel date,
// earliest first.
func (s *FlightService) Search(ctx context.Context, input SearchInput) ([]domain.Flight, error) {
	input.FromLocation = strings.TrimSpace(input.FromLocation)
	input.ToLocation = strings.TrimSpace(input.ToLocation)
	input.TravelDate = strings.TrimSpace(input.TravelDate)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation(DateLayout, input.TravelDate, s.location)
	if err != nil {
		return nil, domain.ValidationError("Validation failed", "travelDate: must be a date in yyyy-MM-dd format")
	}
	now := s.now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	if day.Before(today) {
		return nil, domain.ValidationError("Validation failed", "travelDate: must be today or a future date")
	}

	key := cache.SearchKey{
		From:       input.FromLocation,
		To:         input.ToLocation,
		Date:       input.TravelDate,
		Passengers: input.NumberOfPassengers,
	}
	if s.cache != nil {
		cached, ok, err := s.cache.GetSearch(ctx, key)
		switch {
		case err != nil:
			metrics.ObserveSearchCache("error")
			s.log.WithError(err).Warn("search cache read failed")
		case ok:
			metrics.ObserveSearchCache("hit")
			return cached, nil
		default:
			metrics.ObserveSearchCache("miss")
		}
	}

	flights, err := s.store.Flights().Search(ctx, repository.SearchCriteria{
		FromLocation:  input.FromLocation,
		ToLocation:    input.ToLocation,
		DepartureFrom: day,
		DepartureTo:   day.AddDate(0, 0, 1),
		MinSeats:      input.NumberOfPassengers,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"from":  input.FromLocation,
		"to":    input.ToLocation,
		"date":  input.TravelDate,
		"found": len(flights),
	}).Debug("flights searched")

	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, key, flights); err != nil {
			s.log.WithError(err).Warn("search cache write failed")
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.GetFlight(ctx, id); err == nil && ok {
			return cached, nil
		}
	}

	flight, err := s.store.Flights().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlight(ctx, flight); err != nil {
			s.log.WithError(err).WithField("flight_id", id).Warn("flight cache write failed")
		}
	}
	return flight, nil
}

func (s *FlightService) parseSchedule(departure, arrival string) (time.Time, time.Time, error) {
	var details []string
	dep, err := s.parseDateTime(departure)
	if err != nil {
		details = append(details, "departureTime: must be a date-time in yyyy-MM-ddTHH:mm:ss format")
	} else if !dep.After(s.now()) {
		details = append(details, "departureTime: must be in the future")
	}
	arr, err := s.parseDateTime(arrival)
	if err != nil {
		details = append(details, "arrivalTime: must be a date-time in yyyy-MM-ddTHH:mm:ss format")
	}
	if len(details) > 0 {
		return time.Time{}, time.Time{}, domain.ValidationError("Validation failed", details...)
	}
	return dep, arr, nil
}

// parseDateTime reads a local wall-clock time in the service zone; an
// explicit offset (RFC 3339) is honoured as given.
func (s *FlightService) parseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	t, err := time.ParseInLocation(DateTimeLayout, value, s.location)
	if err == nil {
		return t, nil
	}
	if t, rerr := time.Parse(time.RFC3339, value); rerr == nil {
		return t, nil
	}
	return time.Time{}, err
}

var _ FlightUseCase = (*FlightService)(nil)
