package airlines

import (
	"context"
	"strings"

	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/Domenick1991/flightapp/internal/repository"
	"github.com/Domenick1991/flightapp/internal/validator"
	"github.com/sirupsen/logrus"
)

type AirlineUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Airline, error)
	ListActive(ctx context.Context) ([]domain.Airline, error)
	GetByCode(ctx context.Context, code string) (*domain.Airline, error)
	GetByID(ctx context.Context, id int64) (*domain.Airline, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*domain.Airline, error)
	Deactivate(ctx context.Context, id int64) error
}

type RegisterInput struct {
	Name          string `json:"airlineName" validate:"required,min=2,max=100"`
	Code          string `json:"airlineCode" validate:"required,airline_code"`
	ContactNumber string `json:"contactNumber" validate:"omitempty,contact_number"`
}

// UpdateInput carries the mutable airline fields. The code never changes.
type UpdateInput struct {
	Name          string `json:"airlineName" validate:"required,min=2,max=100"`
	ContactNumber string `json:"contactNumber" validate:"omitempty,contact_number"`
}

type AirlineService struct {
	repo     repository.AirlineRepository
	validate *validator.Validator
	log      logrus.FieldLogger
}

func NewAirlineService(repo repository.AirlineRepository, validate *validator.Validator, log logrus.FieldLogger) *AirlineService {
	return &AirlineService{repo: repo, validate: validate, log: log}
}

func (s *AirlineService) Register(ctx context.Context, input RegisterInput) (*domain.Airline, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.TrimSpace(input.Code)
	input.ContactNumber = strings.TrimSpace(input.ContactNumber)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Duplicate("Airline", "airline code", input.Code)
	}

	airline := &domain.Airline{
		Name:          input.Name,
		Code:          input.Code,
		ContactNumber: input.ContactNumber,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, airline); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"airline_id": airline.ID, "code": airline.Code}).Info("airline registered")
	return airline, nil
}

func (s *AirlineService) ListActive(ctx context.Context) ([]domain.Airline, error) {
	return s.repo.ListActive(ctx)
}

func (s *AirlineService) GetByCode(ctx context.Context, code string) (*domain.Airline, error) {
	return s.repo.GetByCode(ctx, strings.TrimSpace(code))
}

func (s *AirlineService) GetByID(ctx context.Context, id int64) (*domain.Airline, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AirlineService) Update(ctx context.Context, id int64, input UpdateInput) (*domain.Airline, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.ContactNumber = strings.TrimSpace(input.ContactNumber)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	airline, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	airline.Name = input.Name
	airline.ContactNumber = input.ContactNumber
	if err := s.repo.Update(ctx, airline); err != nil {
		return nil, err
	}

	s.log.WithField("airline_id", id).Info("airline updated")
	return airline, nil
}

// Deactivate hides the airline from listings. Its flights keep their data.
func (s *AirlineService) Deactivate(ctx context.Context, id int64) error {
	airline, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !airline.IsActive {
		return nil
	}
	airline.IsActive = false
	if err := s.repo.Update(ctx, airline); err != nil {
		return err
	}

	s.log.WithField("airline_id", id).Info("airline deactivated")
	return nil
}

var _ AirlineUseCase = (*AirlineService)(nil)
