package restaurant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is read-mostly from the core's perspective: restaurants are
// provisioned externally (admin tooling, migrations), not created through
// the reservation engine.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Restaurant, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// row mirrors the restaurants table layout: shifts and duration rules are
// stored as JSONB, the rest as plain columns.
type row struct {
	shiftsJSON  []byte
	rulesJSON   []byte
	minAdvance  *int
	maxAdvance  *int
	largeGroup  *int
	pendingTTL  *int
	maxGuestCap *int
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Restaurant, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "name", "timezone", "shifts", "default_duration_minutes", "duration_rules",
		"min_advance_minutes", "max_advance_days", "large_group_threshold",
		"pending_hold_ttl_minutes", "max_guests_per_slot", "created_at", "updated_at",
	).
		From("public.restaurants").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get restaurant query failed: %w", err)
	}

	var rr row
	var rest Restaurant
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&rest.ID, &rest.Name, &rest.Timezone, &rr.shiftsJSON, &rest.DefaultDurationMin, &rr.rulesJSON,
		&rr.minAdvance, &rr.maxAdvance, &rr.largeGroup,
		&rr.pendingTTL, &rr.maxGuestCap, &rest.CreatedAt, &rest.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get restaurant failed: %w", err)
	}

	if len(rr.shiftsJSON) > 0 {
		if err := json.Unmarshal(rr.shiftsJSON, &rest.Shifts); err != nil {
			return nil, fmt.Errorf("decode restaurant shifts failed: %w", err)
		}
	}
	if len(rr.rulesJSON) > 0 {
		if err := json.Unmarshal(rr.rulesJSON, &rest.DurationRules); err != nil {
			return nil, fmt.Errorf("decode restaurant duration rules failed: %w", err)
		}
	}
	if rr.minAdvance != nil || rr.maxAdvance != nil {
		rest.Advance = &AdvancePolicy{MinAdvanceMinutes: rr.minAdvance, MaxAdvanceDays: rr.maxAdvance}
	}
	rest.LargeGroupThreshold = rr.largeGroup
	rest.PendingHoldTTLMinutes = rr.pendingTTL
	rest.MaxGuestsPerSlot = rr.maxGuestCap

	if err := rest.Validate(); err != nil {
		return nil, err
	}
	return &rest, nil
}
