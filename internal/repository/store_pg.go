package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightapp/internal/domain"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// DBConn is satisfied by *pgxpool.Pool and pgx.Tx. Begin on a pgx.Tx opens
// a savepoint, so repositories can group writes the same way in both cases.
type DBConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGStore struct {
	db DBConn
	sb sq.StatementBuilderType
}

func NewPGStore(db DBConn) *PGStore {
	return &PGStore{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (s *PGStore) Airlines() AirlineRepository {
	return &PGAirlineRepository{db: s.db, sb: s.sb}
}

func (s *PGStore) Flights() FlightRepository {
	return &PGFlightRepository{db: s.db, sb: s.sb}
}

func (s *PGStore) Bookings() BookingRepository {
	return &PGBookingRepository{db: s.db, sb: s.sb}
}

type PGTransactor struct {
	*PGStore
}

func NewPGTransactor(db DBConn) *PGTransactor {
	return &PGTransactor{PGStore: NewPGStore(db)}
}

func (t *PGTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, NewPGStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db DBConn) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// translate maps driver errors onto the domain taxonomy.
func translate(err error, resource, field string, value any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound(resource, field, value)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.WrapError(domain.KindConflict, err, "%s already exists with %s: %v", resource, field, value)
	}
	return err
}

var (
	_ Transactor = (*PGTransactor)(nil)
	_ Store      = (*PGStore)(nil)
)
