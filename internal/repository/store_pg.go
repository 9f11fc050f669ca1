package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	sqlStateUniqueViolation      = "23505"
	sqlStateForeignKeyViolation  = "23503"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

const defaultTxAttempts = 3

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGStore struct {
	pool       *pgxpool.Pool
	db         querier
	inTx       bool
	txAttempts int
	retryDelay time.Duration
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{
		pool:       pool,
		db:         pool,
		txAttempts: defaultTxAttempts,
		retryDelay: 50 * time.Millisecond,
	}
}

func (s *PGStore) Flights() FlightRepository { return &PGFlightRepository{db: s.db} }
func (s *PGStore) Orders() OrderRepository { return &PGOrderRepository{db: s.db} }
func (s *PGStore) Tickets() TicketRepository { return &PGTicketRepository{db: s.db} }
func (s *PGStore) Catalog() CatalogRepository { return &PGCatalogRepository{db: s.db} }

// WithinTx runs fn in a read-committed transaction, retrying it on
// serialization failures and deadlocks. Nested calls join the outer
// transaction.
func (s *PGStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}

	var err error
	for attempt := 1; attempt <= s.txAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * s.retryDelay):
		}
	}
	return fmt.Errorf("transaction failed after %d attempts: %w", s.txAttempts, err)
}

func (s *PGStore) runTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PGStore{pool: s.pool, db: tx, inTx: true}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateForeignKeyViolation
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

var _ Store = (*PGStore)(nil)
