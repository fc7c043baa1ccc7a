package sector

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is read-mostly: sectors are provisioned externally, like
// restaurants.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Sector, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Sector, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "restaurant_id", "name", "created_at").
		From("public.sectors").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get sector query failed: %w", err)
	}

	var s Sector
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&s.ID, &s.RestaurantID, &s.Name, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get sector failed: %w", err)
	}
	return &s, nil
}
