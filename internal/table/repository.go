package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is read-mostly: tables are provisioned externally, like
// restaurants and sectors (floor-plan management is a Non-goal).
type Repository interface {
	GetByID(ctx context.Context, id string) (*Table, error)
	BySector(ctx context.Context, sectorID string) ([]*Table, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Table, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "sector_id", "name", "min_size", "max_size", "created_at").
		From("public.tables").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get table query failed: %w", err)
	}

	var t Table
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&t.ID, &t.SectorID, &t.Name, &t.MinSize, &t.MaxSize, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get table failed: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *pgxRepository) BySector(ctx context.Context, sectorID string) ([]*Table, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "sector_id", "name", "min_size", "max_size", "created_at").
		From("public.tables").
		Where(squirrel.Eq{"sector_id": sectorID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tables query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tables failed: %w", err)
	}
	defer rows.Close()

	var tables []*Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.ID, &t.SectorID, &t.Name, &t.MinSize, &t.MaxSize, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan table failed: %w", err)
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		tables = append(tables, &t)
	}
	return tables, nil
}
