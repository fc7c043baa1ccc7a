package idempotency

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists idempotency records. Put does a conditional insert
// and signals the caller to fetch the earlier record on collision, backed
// by a unique index on idempotency_keys.key.
type Repository interface {
	Get(ctx context.Context, key string) (*Record, error)
	// Put inserts a new record. If key already exists, it returns
	// ErrKeyExists; the caller should then Get the winning record.
	Put(ctx context.Context, rec *Record) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Get(ctx context.Context, key string) (*Record, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("key", "status_code", "payload", "created_at").
		From("public.idempotency_keys").
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get idempotency record query failed: %w", err)
	}

	var rec Record
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&rec.Key, &rec.StatusCode, &rec.Payload, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency record failed: %w", err)
	}
	return &rec, nil
}

func (r *pgxRepository) Put(ctx context.Context, rec *Record) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.idempotency_keys").
		Columns("key", "status_code", "payload", "created_at").
		Values(rec.Key, rec.StatusCode, rec.Payload, rec.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build put idempotency record query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrKeyExists
		}
		return fmt.Errorf("put idempotency record failed: %w", err)
	}
	return nil
}
