package repository

import (
	"context"

	"github.com/Domenick1991/flightapp/internal/domain"
	sq "github.com/Masterminds/squirrel"
)

var airlineColumns = []string{"id", "name", "code", "COALESCE(contact_number, '')", "is_active", "created_at", "updated_at"}

type PGAirlineRepository struct {
	db DBConn
	sb sq.StatementBuilderType
}

func NewAirlineRepository(db DBConn) AirlineRepository {
	return &PGAirlineRepository{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (r *PGAirlineRepository) Create(ctx context.Context, airline *domain.Airline) error {
	row := r.db.QueryRow(ctx, `INSERT INTO airlines (name, code, contact_number, is_active)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING id, created_at, updated_at`, airline.Name, airline.Code, airline.ContactNumber, airline.IsActive)
	if err := row.Scan(&airline.ID, &airline.CreatedAt, &airline.UpdatedAt); err != nil {
		return translate(err, "Airline", "airline code", airline.Code)
	}
	return nil
}

func (r *PGAirlineRepository) GetByID(ctx context.Context, id int64) (*domain.Airline, error) {
	return r.getOne(ctx, sq.Eq{"id": id}, "id", id)
}

func (r *PGAirlineRepository) GetByCode(ctx context.Context, code string) (*domain.Airline, error) {
	return r.getOne(ctx, sq.Eq{"code": code}, "airline code", code)
}

func (r *PGAirlineRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM airlines WHERE code=$1)`, code).Scan(&exists)
	return exists, err
}

func (r *PGAirlineRepository) ListActive(ctx context.Context) ([]domain.Airline, error) {
	query, args, err := r.sb.Select(airlineColumns...).
		From("airlines").
		Where(sq.Eq{"is_active": true}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	airlines := make([]domain.Airline, 0)
	for rows.Next() {
		var a domain.Airline
		if err := rows.Scan(&a.ID, &a.Name, &a.Code, &a.ContactNumber, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		airlines = append(airlines, a)
	}
	return airlines, rows.Err()
}

func (r *PGAirlineRepository) Update(ctx context.Context, airline *domain.Airline) error {
	row := r.db.QueryRow(ctx, `UPDATE airlines SET name=$1, contact_number=NULLIF($2, ''), is_active=$3, updated_at=now()
		WHERE id=$4 RETURNING updated_at`, airline.Name, airline.ContactNumber, airline.IsActive, airline.ID)
	if err := row.Scan(&airline.UpdatedAt); err != nil {
		return translate(err, "Airline", "id", airline.ID)
	}
	return nil
}

func (r *PGAirlineRepository) getOne(ctx context.Context, where sq.Eq, field string, value any) (*domain.Airline, error) {
	query, args, err := r.sb.Select(airlineColumns...).From("airlines").Where(where).ToSql()
	if err != nil {
		return nil, err
	}

	var a domain.Airline
	if err := r.db.QueryRow(ctx, query, args...).
		Scan(&a.ID, &a.Name, &a.Code, &a.ContactNumber, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, translate(err, "Airline", field, value)
	}
	return &a, nil
}

var _ AirlineRepository = (*PGAirlineRepository)(nil)
